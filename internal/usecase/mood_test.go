package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoodPoolBuckets(t *testing.T) {
	p := NewMoodPicker()

	delta := func(d float64) *float64 { return &d }
	cases := []struct {
		delta *float64
		pool  []string
	}{
		{nil, moodNoHistory},
		{delta(-45), moodCrash},
		{delta(-30), moodCrash},
		{delta(-20), moodCheap},
		{delta(-15), moodCheap},
		{delta(-10), moodSlightlyCheap},
		{delta(-5), moodSlightlyCheap},
		{delta(-4.9), moodFair},
		{delta(0), moodFair},
		{delta(4.9), moodFair},
		{delta(5), moodSlightlyDear},
		{delta(14.9), moodSlightlyDear},
		{delta(15), moodDear},
		{delta(29.9), moodDear},
		{delta(30), moodGouging},
		{delta(250), moodGouging},
	}
	for _, c := range cases {
		got := p.poolFor(c.delta)
		assert.Equalf(t, c.pool[0], got[0], "delta %v landed in the wrong pool", c.delta)
	}
}

func TestMoodPickUsesInjectedRand(t *testing.T) {
	p := newMoodPickerWithRand(func(n int) int { return n - 1 })

	d := -50.0
	assert.Equal(t, moodCrash[len(moodCrash)-1], p.Pick(&d))
}

func TestMoodPickAlwaysInPool(t *testing.T) {
	p := NewMoodPicker()
	d := 10.0
	for i := 0; i < 20; i++ {
		assert.Contains(t, moodSlightlyDear, p.Pick(&d))
	}
}
