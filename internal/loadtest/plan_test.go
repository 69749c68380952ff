package loadtest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedSwitch(t *testing.T) {
	pick, err := weightedSwitch(2, 3, 5)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(1))
	counts := make([]int, 3)
	const n = 100_000
	for i := 0; i < n; i++ {
		counts[pick(rnd)]++
	}
	require.InDelta(t, 0.2, float64(counts[0])/n, 0.01)
	require.InDelta(t, 0.3, float64(counts[1])/n, 0.01)
	require.InDelta(t, 0.5, float64(counts[2])/n, 0.01)
}

func TestWeightedSwitchInvalid(t *testing.T) {
	_, err := weightedSwitch()
	require.Error(t, err)
	_, err = weightedSwitch(1, 0)
	require.Error(t, err)
	_, err = weightedSwitch(-1)
	require.Error(t, err)
}

func taskNames(set TaskSet) []string {
	var names []string
	for _, task := range set.Tasks {
		names = append(names, task.Name)
	}
	return names
}

func TestUmamiPlanDefaults(t *testing.T) {
	plan, err := UmamiPlan(DefaultConfig().TaskSets)
	require.NoError(t, err)
	require.Len(t, plan.Sets, 2)

	english := plan.Sets[0]
	require.Equal(t, "Anonymous English user", english.Name)
	require.Equal(t, 6, english.Weight)
	require.Equal(t, []string{
		"anon /",
		"anon /en/articles/",
		"anon /en/articles/%",
		"anon /en/recipes/",
		"anon /en/recipes/%",
		"anon /en/basicpage",
		"anon /node/%nid",
		"anon /en/contact/feedback",
	}, taskNames(english))

	spanish := plan.Sets[1]
	require.Equal(t, "Anonymous Spanish user", spanish.Name)
	require.Equal(t, 2, spanish.Weight)
	require.Equal(t, "anon /es/", spanish.Tasks[0].Name)
	require.Equal(t, "anon /es/recipes/%", spanish.Tasks[4].Name)

	var weights []int
	for _, task := range english.Tasks {
		weights = append(weights, task.Weight)
	}
	require.Equal(t, []int{2, 1, 2, 1, 4, 1, 1, 1}, weights)
	require.Len(t, plan.Tasks(), 16)
	for _, task := range plan.Tasks() {
		require.NotNil(t, task.Flow, task.Name)
	}
}

func TestUmamiPlanSelection(t *testing.T) {
	plan, err := UmamiPlan(DefaultConfig().TaskSets)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	sets := map[string]int{}
	recipes := 0
	const n = 80_000
	for i := 0; i < n; i++ {
		set, task := plan.Pick(rnd)
		sets[set.Key]++
		if task.Key == TaskRecipe {
			recipes++
		}
	}
	require.InDelta(t, 0.75, float64(sets[SetEnglish])/n, 0.01)
	require.InDelta(t, 0.25, float64(sets[SetSpanish])/n, 0.01)
	// 4 out of 13 in both sets
	require.InDelta(t, 4.0/13, float64(recipes)/n, 0.01)
}

func TestUmamiPlanWeights(t *testing.T) {
	plan, err := UmamiPlan(map[string]SetConfig{
		SetSpanish: {Weight: 1, Tasks: map[string]int{TaskContactForm: 0, TaskRecipe: 10}},
	})
	require.NoError(t, err)
	require.Len(t, plan.Sets, 1)
	require.Equal(t, SetSpanish, plan.Sets[0].Key)

	for _, task := range plan.Sets[0].Tasks {
		require.NotEqual(t, TaskContactForm, task.Key)
		if task.Key == TaskRecipe {
			require.Equal(t, 10, task.Weight)
		}
	}
}

func TestUmamiPlanInvalid(t *testing.T) {
	_, err := UmamiPlan(map[string]SetConfig{"german": {Weight: 1}})
	require.Error(t, err)

	_, err = UmamiPlan(map[string]SetConfig{SetEnglish: {Weight: 1, Tasks: map[string]int{"checkout": 1}}})
	require.Error(t, err)

	_, err = UmamiPlan(map[string]SetConfig{SetEnglish: {Weight: 0}})
	require.Error(t, err)

	_, err = UmamiPlan(nil)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	testCases := []func(c *Config){
		func(c *Config) { c.Host = "" },
		func(c *Config) { c.Users = 0 },
		func(c *Config) { c.HatchRate = 0 },
		func(c *Config) { c.RunTimeSeconds = -1 },
		func(c *Config) { c.WaitMinMs = 10; c.WaitMaxMs = 5 },
		func(c *Config) { c.RequestsPerSecond = -1 },
	}
	for i, mutate := range testCases {
		cfg := DefaultConfig()
		mutate(&cfg)
		require.Error(t, cfg.Validate(), "case %d", i)
	}
}
