package generator_test

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/legipwd/internal/alphabet"
	"github.com/verte-zerg/legipwd/internal/errutil"
	"github.com/verte-zerg/legipwd/internal/generator"
)

func newSampler(opts ...generator.Option) (*generator.Sampler, *alphabet.Alphabet) {
	alpha := alphabet.Default()
	opts = append([]generator.Option{generator.WithSeed(42)}, opts...)
	return generator.New(alpha, opts...), alpha
}

// assertPasswordPolicy checks every structural property of a password.
func assertPasswordPolicy(t *testing.T, alpha *alphabet.Alphabet, pw string) {
	t.Helper()
	runes := []rune(pw)
	require.Len(t, runes, generator.PasswordLength, "password %q", pw)

	seen := map[rune]bool{}
	prefix := map[alphabet.Class]bool{}
	for i, r := range runes {
		c, err := alpha.ClassOf(r)
		require.NoError(t, err, "password %q has out-of-alphabet symbol %q", pw, r)
		assert.False(t, seen[r], "password %q repeats %q", pw, r)
		seen[r] = true
		if i < generator.PrefixLength {
			prefix[c] = true
		}
		if i == 0 {
			assert.True(t, c.IsLetter(), "password %q does not start with a letter", pw)
		}
	}
	assert.Len(t, prefix, 4, "password %q prefix misses a class", pw)
}

func TestSampleOne_LengthAndMembership(t *testing.T) {
	s, alpha := newSampler()
	for i := 0; i < 200; i++ {
		c := s.SampleOne()
		runes := []rune(c)
		require.Len(t, runes, generator.PasswordLength)
		for _, r := range runes {
			assert.True(t, alpha.Contains(r), "candidate %q has %q", c, r)
		}
	}
}

func TestSampleOne_SameSeedSameSequence(t *testing.T) {
	a, _ := newSampler()
	b, _ := newSampler()
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.SampleOne(), b.SampleOne())
	}
}

func TestGenerate_DefaultBatch(t *testing.T) {
	s, alpha := newSampler()

	passwords, err := s.Generate(generator.DefaultBatchSize)
	require.NoError(t, err)
	require.Len(t, passwords, generator.DefaultBatchSize)

	distinct := map[string]bool{}
	for _, pw := range passwords {
		assert.False(t, distinct[pw], "duplicate password %q", pw)
		distinct[pw] = true
		assertPasswordPolicy(t, alpha, pw)
		assert.True(t, s.IsValid(pw))
	}
}

func TestGenerate_UnseededSampler(t *testing.T) {
	alpha := alphabet.Default()
	s := generator.New(alpha)

	passwords, err := s.Generate(5)
	require.NoError(t, err)
	for _, pw := range passwords {
		assertPasswordPolicy(t, alpha, pw)
	}
}

func TestSampleBatch_Stats(t *testing.T) {
	s, _ := newSampler()

	batch, err := s.SampleBatch(10)
	require.NoError(t, err)

	st := batch.Stats
	assert.Equal(t, 10, st.Accepted)
	assert.Equal(t, 1, st.Workers)
	var rejected uint64
	for _, n := range st.Rejections {
		rejected += n
	}
	assert.Equal(t, st.Attempts, uint64(st.Accepted)+st.Duplicates+rejected)
	assert.NotContains(t, st.Rejections, generator.RejectLength)
	assert.NotContains(t, st.Rejections, generator.RejectUnknownSymbol)
	assert.Greater(t, st.AcceptanceRate(), 0.0)
	assert.LessOrEqual(t, st.AcceptanceRate(), 1.0)
}

func TestSampleBatch_InvalidSize(t *testing.T) {
	s, _ := newSampler()
	for _, n := range []int{0, -3} {
		_, err := s.SampleBatch(n)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_BATCH_SIZE")
	}
}

func TestSampleBatch_AttemptCap(t *testing.T) {
	s, _ := newSampler(generator.WithMaxAttempts(5))

	_, err := s.SampleBatch(generator.DefaultBatchSize)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrUnsatisfiableBatchSize))
	errutil.AssertErrorCode(t, err, "UNSATISFIABLE_BATCH_SIZE")
	errutil.AssertErrorContext(t, err, "requested", generator.DefaultBatchSize)
}

func TestWithMaxAttempts_IgnoresNonPositive(t *testing.T) {
	s, _ := newSampler(generator.WithMaxAttempts(0))
	assert.Equal(t, uint64(generator.DefaultMaxAttempts), s.MaxAttempts())
}

func TestFeasibleBound(t *testing.T) {
	s, _ := newSampler()

	want := big.NewInt(1)
	for i := int64(61); i > 61-generator.PasswordLength; i-- {
		want.Mul(want, big.NewInt(i))
	}
	assert.Equal(t, 0, want.Cmp(s.FeasibleBound()))
	assert.False(t, s.FeasibleBound().IsInt64(), "bound exceeds int64")
}

func TestSampleBatch_AlphabetShorterThanPassword(t *testing.T) {
	small := alphabet.New(map[alphabet.Class]string{
		alphabet.Lower:   "abc",
		alphabet.Upper:   "ABC",
		alphabet.Digit:   "234",
		alphabet.Special: "#+.",
	})
	s := generator.New(small, generator.WithSeed(1))
	assert.Equal(t, 0, s.FeasibleBound().Sign())

	_, err := s.SampleBatch(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrUnsatisfiableBatchSize))
	errutil.AssertErrorCode(t, err, "UNSATISFIABLE_BATCH_SIZE")
	errutil.AssertErrorContext(t, err, "bound", "0")
}

func TestSampleBatch_BeyondFeasibleBound(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("bound does not fit into int")
	}
	tight := alphabet.New(map[alphabet.Class]string{
		alphabet.Lower:   "abcd",
		alphabet.Upper:   "ABC",
		alphabet.Digit:   "234",
		alphabet.Special: "#+.",
	})
	s := generator.New(tight, generator.WithSeed(1))
	bound := s.FeasibleBound()
	require.Equal(t, "6227020800", bound.String())

	n := int(bound.Int64()) + 1
	_, err := s.SampleBatch(n)
	errutil.AssertErrorCode(t, err, "UNSATISFIABLE_BATCH_SIZE")
	errutil.AssertErrorContext(t, err, "requested", n)

	_, err = s.SampleBatchParallel(context.Background(), n, 4)
	errutil.AssertErrorCode(t, err, "UNSATISFIABLE_BATCH_SIZE")
}

func TestCheck_Scenarios(t *testing.T) {
	s, _ := newSampler()
	tests := []struct {
		name      string
		candidate string
		want      generator.Rejection
	}{
		{"valid", "aB3#kmnpqrstu", generator.RejectNone},
		{"valid upper start", "Qa9_bcdefghij", generator.RejectNone},
		{"repeated lowercase", "aabcdef23#ABC", generator.RejectRepeated},
		{"leading digit", "2aB#cdefGHJK3", generator.RejectLeadingClass},
		{"leading special", "#aB2cdefGHJK3", generator.RejectLeadingClass},
		{"lowercase prefix", "abcdefGH23#+4", generator.RejectPrefixCoverage},
		{"digit-led lowercase prefix", "2abcdefABCD34", generator.RejectPrefixCoverage},
		{"prefix misses special", "aB3cde#fghijk", generator.RejectPrefixCoverage},
		{"out of alphabet", "1Ab3#Kq9fLp2M", generator.RejectUnknownSymbol},
		{"lookalike O", "OAb3#Kq9fLp2M", generator.RejectUnknownSymbol},
		{"too short", "1Ab3#Kq9fLp2", generator.RejectLength},
		{"too long", "aB3#kmnpqrstuv", generator.RejectLength},
		{"empty", "", generator.RejectLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Check(tt.candidate)
			assert.Equal(t, tt.want, got, "Check(%q) = %s", tt.candidate, got)
			assert.Equal(t, tt.want == generator.RejectNone, s.IsValid(tt.candidate))
		})
	}
}

func TestAllUnique(t *testing.T) {
	assert.True(t, generator.AllUnique([]rune("abc")))
	assert.True(t, generator.AllUnique(nil))
	assert.False(t, generator.AllUnique([]rune("aba")))
}

func TestCoversAllClasses(t *testing.T) {
	all := []alphabet.Class{alphabet.Special, alphabet.Lower, alphabet.Digit, alphabet.Upper}
	assert.True(t, generator.CoversAllClasses(all))
	assert.False(t, generator.CoversAllClasses(all[:3]))
	assert.False(t, generator.CoversAllClasses(nil))
}

func TestStartsWithLetter(t *testing.T) {
	assert.True(t, generator.StartsWithLetter([]alphabet.Class{alphabet.Upper, alphabet.Digit}))
	assert.True(t, generator.StartsWithLetter([]alphabet.Class{alphabet.Lower}))
	assert.False(t, generator.StartsWithLetter([]alphabet.Class{alphabet.Special, alphabet.Lower}))
	assert.False(t, generator.StartsWithLetter(nil))
}

func TestRejection_Names(t *testing.T) {
	for _, r := range append([]generator.Rejection{generator.RejectNone}, generator.Rejections()...) {
		parsed, ok := generator.ParseRejection(r.String())
		require.True(t, ok, "rule %d", r)
		assert.Equal(t, r, parsed)
		assert.NotEqual(t, "unknown rule", r.Describe())
	}
	_, ok := generator.ParseRejection("nope")
	assert.False(t, ok)
	assert.Equal(t, "unknown", generator.Rejection(99).String())
}

func TestWithProgress(t *testing.T) {
	var reports []generator.Progress
	s, _ := newSampler(generator.WithProgress(func(p generator.Progress) {
		reports = append(reports, p)
	}))

	_, err := s.SampleBatch(4)
	require.NoError(t, err)
	require.Len(t, reports, 4)
	for i, p := range reports {
		assert.Equal(t, i+1, p.Accepted)
		assert.Equal(t, 4, p.Target)
		assert.GreaterOrEqual(t, p.Attempts, uint64(i+1))
	}
}

func TestSampleBatchParallel(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s, alpha := newSampler(generator.WithProgress(func(generator.Progress) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))

	batch, err := s.SampleBatchParallel(context.Background(), 50, 4)
	require.NoError(t, err)
	require.Len(t, batch.Passwords, 50)
	assert.Equal(t, 4, batch.Stats.Workers)
	assert.Equal(t, 50, batch.Stats.Accepted)
	assert.Equal(t, 50, calls)

	distinct := map[string]bool{}
	for _, pw := range batch.Passwords {
		assert.False(t, distinct[pw], "duplicate password %q", pw)
		distinct[pw] = true
		assertPasswordPolicy(t, alpha, pw)
	}

	var rejected uint64
	for _, n := range batch.Stats.Rejections {
		rejected += n
	}
	assert.GreaterOrEqual(t, batch.Stats.Attempts, uint64(batch.Stats.Accepted)+rejected)
}

func TestSampleBatchParallel_SingleWorkerDelegates(t *testing.T) {
	s, _ := newSampler()
	batch, err := s.SampleBatchParallel(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Len(t, batch.Passwords, 3)
	assert.Equal(t, 1, batch.Stats.Workers)
}

func TestSampleBatchParallel_AttemptCap(t *testing.T) {
	s, _ := newSampler(generator.WithMaxAttempts(10))

	_, err := s.SampleBatchParallel(context.Background(), generator.DefaultBatchSize, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrUnsatisfiableBatchSize))
	errutil.AssertErrorCode(t, err, "UNSATISFIABLE_BATCH_SIZE")
}

func TestSampleBatchParallel_Canceled(t *testing.T) {
	s, _ := newSampler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SampleBatchParallel(ctx, generator.DefaultBatchSize, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSampleBatchParallel_InvalidSize(t *testing.T) {
	s, _ := newSampler()
	_, err := s.SampleBatchParallel(context.Background(), 0, 4)
	errutil.AssertErrorCode(t, err, "INVALID_BATCH_SIZE")
}

func BenchmarkSampleBatch(b *testing.B) {
	s := generator.New(alphabet.Default(), generator.WithSeed(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SampleBatch(generator.DefaultBatchSize); err != nil {
			b.Fatal(err)
		}
	}
}
