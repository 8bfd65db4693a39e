package helper_test

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"shop_manager/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReferenceChecker struct {
	existsFunc func(reference string) (bool, error)
}

func (m *mockReferenceChecker) ReferenceExists(reference string) (bool, error) {
	return m.existsFunc(reference)
}

func referencePattern(t *testing.T) *regexp.Regexp {
	t.Helper()
	return regexp.MustCompile(fmt.Sprintf("^SC-[%s]{4}-[%s]{4}$", helper.ReferenceAlphabet, helper.ReferenceAlphabet))
}

func TestGenerateOrderReferenceFormat(t *testing.T) {
	checker := &mockReferenceChecker{
		existsFunc: func(reference string) (bool, error) { return false, nil },
	}
	pattern := referencePattern(t)

	for i := 0; i < 100; i++ {
		reference, err := helper.GenerateOrderReference(checker)
		require.NoError(t, err)
		assert.Regexp(t, pattern, reference)
		assert.False(t, strings.ContainsAny(reference[3:], "0O1I"), "reference %s contains an ambiguous symbol", reference)
	}
}

func TestGenerateOrderReferenceRetriesOnCollision(t *testing.T) {
	var seen []string
	checker := &mockReferenceChecker{
		existsFunc: func(reference string) (bool, error) {
			seen = append(seen, reference)
			// first draw collides, every later draw is free
			return len(seen) == 1, nil
		},
	}

	reference, err := helper.GenerateOrderReference(checker)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, seen[1], reference)
	assert.Regexp(t, referencePattern(t), reference)
}

func TestGenerateOrderReferenceStoreError(t *testing.T) {
	checker := &mockReferenceChecker{
		existsFunc: func(reference string) (bool, error) {
			return false, assert.AnError
		},
	}

	reference, err := helper.GenerateOrderReference(checker)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, reference)
}

func TestGenerateOrderReferenceConcurrentDistinct(t *testing.T) {
	var mu sync.Mutex
	taken := make(map[string]bool)

	checker := &mockReferenceChecker{
		existsFunc: func(reference string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			return taken[reference], nil
		},
	}

	var wg sync.WaitGroup
	pattern := referencePattern(t)
	references := make([]string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reference, err := helper.GenerateOrderReference(checker)
			assert.NoError(t, err)
			assert.Regexp(t, pattern, reference)

			mu.Lock()
			taken[reference] = true
			mu.Unlock()
			references[i] = reference
		}(i)
	}
	wg.Wait()

	distinct := make(map[string]bool)
	for _, reference := range references {
		distinct[reference] = true
	}
	assert.Len(t, distinct, 50, "concurrent generation produced a duplicate reference")
}
