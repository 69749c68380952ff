package loadtest

import (
	"fmt"
	"math/rand"
	"umami-loadtest/internal/catalog"
	"umami-loadtest/internal/visit"
)

// Task is one weighted action of a task set. Its name groups the page requests it makes.
type Task struct {
	Key    string
	Name   string
	Weight int
	Flow   visit.Flow
}

// TaskSet simulates one type of visitor.
type TaskSet struct {
	Key    string
	Name   string
	Weight int
	Tasks  []Task

	pick func(*rand.Rand) int
}

// Plan is what the virtual users run: every iteration picks a set by weight, then a task of
// that set by weight.
type Plan struct {
	Sets []TaskSet

	pick func(*rand.Rand) int
}

// NewPlan drops the sets and tasks with a weight of 0. It fails if nothing is left to run.
func NewPlan(sets []TaskSet) (Plan, error) {
	var plan Plan
	var setWeights []int
	for _, set := range sets {
		if set.Weight <= 0 {
			continue
		}

		var tasks []Task
		var taskWeights []int
		for _, task := range set.Tasks {
			if task.Weight <= 0 {
				continue
			}
			tasks = append(tasks, task)
			taskWeights = append(taskWeights, task.Weight)
		}
		if len(tasks) == 0 {
			continue
		}

		pick, err := weightedSwitch(taskWeights...)
		if err != nil {
			return Plan{}, fmt.Errorf("task set %s: %w", set.Name, err)
		}
		set.Tasks = tasks
		set.pick = pick
		plan.Sets = append(plan.Sets, set)
		setWeights = append(setWeights, set.Weight)
	}

	pick, err := weightedSwitch(setWeights...)
	if err != nil {
		return Plan{}, fmt.Errorf("plan has no task to run: %w", err)
	}
	plan.pick = pick
	return plan, nil
}

func (p Plan) Pick(rnd *rand.Rand) (TaskSet, Task) {
	set := p.Sets[p.pick(rnd)]
	return set, set.Tasks[set.pick(rnd)]
}

// Tasks lists the tasks of every set, in set order.
func (p Plan) Tasks() []Task {
	var out []Task
	for _, set := range p.Sets {
		out = append(out, set.Tasks...)
	}
	return out
}

const (
	SetEnglish = "english"
	SetSpanish = "spanish"
)

const (
	TaskFrontPage      = "front_page"
	TaskArticleListing = "article_listing"
	TaskArticle        = "article"
	TaskRecipeListing  = "recipe_listing"
	TaskRecipe         = "recipe"
	TaskBasicPage      = "basic_page"
	TaskNodeByID       = "node_by_id"
	TaskContactForm    = "contact_form"
)

var defaultTaskWeights = map[string]int{
	TaskFrontPage:      2,
	TaskArticleListing: 1,
	TaskArticle:        2,
	TaskRecipeListing:  1,
	TaskRecipe:         4,
	TaskBasicPage:      1,
	TaskNodeByID:       1,
	TaskContactForm:    1,
}

var setKeys = map[catalog.Locale]string{
	catalog.EN: SetEnglish,
	catalog.ES: SetSpanish,
}

var setNames = map[catalog.Locale]string{
	catalog.EN: "Anonymous English user",
	catalog.ES: "Anonymous Spanish user",
}

func localeTasks(l catalog.Locale) []Task {
	front := "anon /"
	if l != catalog.EN {
		front = fmt.Sprintf("anon /%s/", l)
	}
	return []Task{
		{Key: TaskFrontPage, Name: front, Flow: visit.FrontPage(l)},
		{Key: TaskArticleListing, Name: fmt.Sprintf("anon /%s/articles/", l), Flow: visit.Listing(l, catalog.Article)},
		{Key: TaskArticle, Name: fmt.Sprintf("anon /%s/articles/%%", l), Flow: visit.RandomNode(l, catalog.Article)},
		{Key: TaskRecipeListing, Name: fmt.Sprintf("anon /%s/recipes/", l), Flow: visit.Listing(l, catalog.Recipe)},
		{Key: TaskRecipe, Name: fmt.Sprintf("anon /%s/recipes/%%", l), Flow: visit.RandomNode(l, catalog.Recipe)},
		{Key: TaskBasicPage, Name: fmt.Sprintf("anon /%s/basicpage", l), Flow: visit.BasicPage(l)},
		{Key: TaskNodeByID, Name: "anon /node/%nid", Flow: visit.NodeByID()},
		{Key: TaskContactForm, Name: fmt.Sprintf("anon /%s/contact/feedback", l), Flow: visit.ContactForm(l)},
	}
}

// UmamiPlan builds the english and spanish visitor sets, weighted by `sets`. A set missing
// from `sets` is not run.
func UmamiPlan(sets map[string]SetConfig) (Plan, error) {
	var taskSets []TaskSet
	for _, l := range catalog.Locales {
		key := setKeys[l]
		cfg, ok := sets[key]
		if !ok {
			continue
		}
		tasks := localeTasks(l)
		for i := range tasks {
			weight, ok := cfg.Tasks[tasks[i].Key]
			if !ok {
				weight = defaultTaskWeights[tasks[i].Key]
			}
			tasks[i].Weight = weight
		}
		taskSets = append(taskSets, TaskSet{
			Key:    key,
			Name:   setNames[l],
			Weight: cfg.Weight,
			Tasks:  tasks,
		})
	}

	for key := range sets {
		if key != SetEnglish && key != SetSpanish {
			return Plan{}, fmt.Errorf("unknown task set %q", key)
		}
		for task := range sets[key].Tasks {
			if _, ok := defaultTaskWeights[task]; !ok {
				return Plan{}, fmt.Errorf("task set %s: unknown task %q", key, task)
			}
		}
	}

	return NewPlan(taskSets)
}
