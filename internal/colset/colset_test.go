package colset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlforge/internal/record"
)

func TestInferColumnOrder(t *testing.T) {
	rec := record.New().
		Set("one", 123).
		Set("two", "test").
		Set("three", true)

	cs, err := Infer(rec, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, cs.Names())
}

func TestInferRequiresRecord(t *testing.T) {
	var configErr *ConfigError

	_, err := Infer(nil, Options{})
	require.ErrorAs(t, err, &configErr)

	_, err = Infer(record.New(), Options{})
	require.ErrorAs(t, err, &configErr)
}

func TestNewSchemaHints(t *testing.T) {
	tests := []struct {
		name     string
		schema   any
		expected []string
	}{
		{"name slice", []string{"a", "b"}, []string{"a", "b"}},
		{"single name", "only", []string{"only"}},
		{"single descriptor", Descriptor{Name: "only"}, []string{"only"}},
		{
			"descriptors",
			[]Descriptor{{Name: "a"}, {Name: "b", SourceKey: "bee"}},
			[]string{"a", "b"},
		},
		{
			"duplicates keep first position",
			[]string{"a", "b", "a", "c", "b"},
			[]string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := New(tt.schema, nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cs.Names())
		})
	}
}

func TestNewRejectsBadHints(t *testing.T) {
	var configErr *ConfigError

	_, err := New([]string{}, nil, Options{})
	require.ErrorAs(t, err, &configErr)

	_, err = New(42, nil, Options{})
	require.ErrorAs(t, err, &configErr)

	_, err = New([]Descriptor{{Name: ""}}, nil, Options{})
	require.ErrorAs(t, err, &configErr)
}

func TestPrepareAlignsWithNames(t *testing.T) {
	cs, err := New([]Descriptor{
		{Name: "a"},
		{Name: "b", Default: "fallback", HasDefault: true},
		{Name: "c", Nullable: true},
	}, nil, Options{})
	require.NoError(t, err)

	rec := record.New().
		Set("a", 1).
		Set("untracked", "ignored")

	values, err := cs.Prepare(rec)
	require.NoError(t, err)
	require.Len(t, values, len(cs.Names()))
	assert.Equal(t, []any{1, "fallback", nil}, values)
}

func TestPrepareSourceKey(t *testing.T) {
	cs, err := New([]Descriptor{{Name: "display_name", SourceKey: "displayName"}}, nil, Options{})
	require.NoError(t, err)

	values, err := cs.Prepare(record.New().Set("displayName", "x"))
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, values)
}

func TestPrepareMissingValue(t *testing.T) {
	cs, err := New([]string{"a", "b"}, nil, Options{})
	require.NoError(t, err)

	_, err = cs.Prepare(record.New().Set("a", 1))
	var missing *MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Column)
	assert.Equal(t, -1, missing.Index)
}

func TestPrepareNullMissingPolicy(t *testing.T) {
	cs, err := New([]string{"a", "b"}, nil, Options{NullMissing: true})
	require.NoError(t, err)

	values, err := cs.Prepare(record.New().Set("a", 1))
	require.NoError(t, err)
	assert.Equal(t, []any{1, nil}, values)
}

func TestPresentNilIsNullNotMissing(t *testing.T) {
	cs, err := New([]Descriptor{{Name: "a", Default: "unused", HasDefault: true}}, nil, Options{})
	require.NoError(t, err)

	values, err := cs.Prepare(record.New().Set("a", nil))
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, values)
}

func TestComputeRunsEvenWhenPresent(t *testing.T) {
	cs, err := New([]Descriptor{
		{Name: "one"},
		{Name: "four", Compute: func(cur any, present bool, rec *record.Record) any {
			if one, ok := rec.Lookup("one"); ok && one == 1 {
				return false
			}
			return cur
		}},
	}, nil, Options{})
	require.NoError(t, err)

	// four is populated but the sibling rule overrides it.
	values, err := cs.Prepare(record.New().Set("one", 1).Set("four", true))
	require.NoError(t, err)
	assert.Equal(t, []any{1, false}, values)

	// sibling rule does not fire, populated value passes through.
	values, err = cs.Prepare(record.New().Set("one", 2).Set("four", true))
	require.NoError(t, err)
	assert.Equal(t, []any{2, true}, values)
}

func TestComputeSeesOriginalRecord(t *testing.T) {
	cs, err := New([]Descriptor{
		{Name: "a", Compute: func(cur any, present bool, _ *record.Record) any {
			return "rewritten"
		}},
		{Name: "b", Compute: func(_ any, _ bool, rec *record.Record) any {
			// Must observe the record value of a, not the resolved output.
			v, _ := rec.Lookup("a")
			return v
		}},
	}, nil, Options{})
	require.NoError(t, err)

	values, err := cs.Prepare(record.New().Set("a", "original").Set("b", "x"))
	require.NoError(t, err)
	assert.Equal(t, []any{"rewritten", "original"}, values)
}

func TestWithExclusions(t *testing.T) {
	computeRan := false
	cs, err := New([]Descriptor{
		{Name: "keep"},
		{Name: "drop", Compute: func(any, bool, *record.Record) any {
			computeRan = true
			return nil
		}},
	}, nil, Options{})
	require.NoError(t, err)

	excluded := cs.WithExclusions("drop", "unknown")
	assert.Equal(t, []string{"keep"}, excluded.Names())

	// Idempotent: excluding again changes nothing.
	assert.Equal(t, excluded.Names(), excluded.WithExclusions("drop").Names())

	_, err = excluded.Prepare(record.New().Set("keep", 1))
	require.NoError(t, err)
	assert.False(t, computeRan, "excluded column must not run its compute function")

	// The original set is untouched.
	assert.Equal(t, []string{"keep", "drop"}, cs.Names())
}

func TestRememberedTable(t *testing.T) {
	cs, err := New([]string{"a"}, nil, Options{Table: "events"})
	require.NoError(t, err)
	assert.Equal(t, "events", cs.Table())
	assert.Equal(t, "events", cs.WithExclusions("a").Table())
}

func TestCacheIsNotObservable(t *testing.T) {
	cs, err := New([]Descriptor{
		{Name: "a"},
		{Name: "b", Default: 7, HasDefault: true},
	}, nil, Options{})
	require.NoError(t, err)
	cached := cs.WithCache()

	recs := []*record.Record{
		record.New().Set("a", 1),
		record.New().Set("a", 2).Set("b", 3),
		record.New().Set("a", 1), // same content as the first
	}

	for _, rec := range recs {
		plain, err := cs.Prepare(rec)
		require.NoError(t, err)
		memo, err := cached.Prepare(rec)
		require.NoError(t, err)
		assert.Equal(t, plain, memo)

		// Repeat to hit the memo path.
		again, err := cached.Prepare(rec)
		require.NoError(t, err)
		assert.Equal(t, plain, again)
	}
}

func TestCacheConcurrentPrepare(t *testing.T) {
	cs, err := New([]string{"a", "b"}, nil, Options{})
	require.NoError(t, err)
	cached := cs.WithCache()

	rec := record.New().Set("a", 1).Set("b", "x")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values, err := cached.Prepare(rec)
			assert.NoError(t, err)
			assert.Equal(t, []any{1, "x"}, values)
		}()
	}
	wg.Wait()
}

func TestUUIDDefault(t *testing.T) {
	cs, err := New([]Descriptor{{Name: "id", Compute: UUIDDefault}, {Name: "n"}}, nil, Options{})
	require.NoError(t, err)

	values, err := cs.Prepare(record.New().Set("n", 1))
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.NotEmpty(t, values[0])

	values, err = cs.Prepare(record.New().Set("id", "fixed").Set("n", 1))
	require.NoError(t, err)
	assert.Equal(t, "fixed", values[0])
}
