// Package generator samples legible passwords that satisfy the fixed
// structural policy.
package generator

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/big"
	"math/rand"
	"time"

	"github.com/samber/oops"

	"github.com/verte-zerg/legipwd/internal/alphabet"
)

// Password policy.
const (
	PasswordLength     = 13
	PrefixLength       = 6
	DefaultBatchSize   = 30
	DefaultMaxAttempts = 10_000_000
)

// ErrUnsatisfiableBatchSize is returned when a batch cannot be filled, either
// because the request exceeds the number of possible passwords or because the
// attempt cap was reached first.
var ErrUnsatisfiableBatchSize = errors.New("batch size cannot be satisfied")

// Progress is reported after each accepted password.
type Progress struct {
	Accepted int
	Target   int
	Attempts uint64
}

// Sampler draws candidates from an alphabet and keeps the valid ones.
type Sampler struct {
	alpha       *alphabet.Alphabet
	rnd         *rand.Rand
	maxAttempts uint64
	progress    func(Progress)
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithSeed makes the sampler deterministic.
func WithSeed(seed int64) Option {
	return func(s *Sampler) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithSource uses src for all draws.
func WithSource(src rand.Source) Option {
	return func(s *Sampler) {
		s.rnd = rand.New(src)
	}
}

// WithMaxAttempts caps the number of candidates drawn per batch. Values <= 0
// keep the default.
func WithMaxAttempts(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.maxAttempts = uint64(n)
		}
	}
}

// WithProgress registers a callback invoked after each accepted password.
// Calls are serialized, also in parallel mode.
func WithProgress(fn func(Progress)) Option {
	return func(s *Sampler) {
		s.progress = fn
	}
}

// New returns a Sampler over alpha seeded from system entropy.
func New(alpha *alphabet.Alphabet, opts ...Option) *Sampler {
	s := &Sampler{
		alpha:       alpha,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(entropySeed()))
	}
	return s
}

// MaxAttempts returns the per-batch attempt cap.
func (s *Sampler) MaxAttempts() uint64 {
	return s.maxAttempts
}

// SampleOne draws PasswordLength symbols uniformly with replacement. The
// result is not validated.
func (s *Sampler) SampleOne() string {
	buf := make([]rune, PasswordLength)
	s.fill(s.rnd, buf)
	return string(buf)
}

// IsValid reports whether candidate satisfies every rule of the policy.
func (s *Sampler) IsValid(candidate string) bool {
	return s.Check(candidate) == RejectNone
}

// Check returns the first rule candidate violates, or RejectNone.
func (s *Sampler) Check(candidate string) Rejection {
	return s.check([]rune(candidate))
}

// Generate returns n distinct valid passwords.
func (s *Sampler) Generate(n int) ([]string, error) {
	batch, err := s.SampleBatch(n)
	if err != nil {
		return nil, err
	}
	return batch.Passwords, nil
}

// SampleBatch draws candidates until n distinct valid passwords are collected
// or the attempt cap is reached.
func (s *Sampler) SampleBatch(n int) (Batch, error) {
	if err := s.checkBatchSize(n); err != nil {
		return Batch{}, err
	}

	start := time.Now()
	var counts rejectionCounts
	var attempts, duplicates uint64
	seen := make(map[string]struct{}, n)
	passwords := make([]string, 0, n)
	buf := make([]rune, PasswordLength)

	for len(passwords) < n {
		if attempts >= s.maxAttempts {
			return Batch{}, s.exhausted(n, len(passwords), attempts)
		}
		attempts++
		s.fill(s.rnd, buf)
		if r := s.check(buf); r != RejectNone {
			counts[r]++
			continue
		}
		pw := string(buf)
		if _, dup := seen[pw]; dup {
			duplicates++
			continue
		}
		seen[pw] = struct{}{}
		passwords = append(passwords, pw)
		s.report(Progress{Accepted: len(passwords), Target: n, Attempts: attempts})
	}

	return Batch{
		Passwords: passwords,
		Stats: Stats{
			Attempts:   attempts,
			Accepted:   len(passwords),
			Duplicates: duplicates,
			Rejections: counts.toMap(),
			Duration:   time.Since(start),
			Workers:    1,
		},
	}, nil
}

// FeasibleBound returns an upper bound on the number of distinct valid
// passwords: the 13-permutations of the alphabet.
func (s *Sampler) FeasibleBound() *big.Int {
	total := big.NewInt(1)
	size := int64(s.alpha.Len())
	for i := int64(0); i < PasswordLength; i++ {
		total.Mul(total, big.NewInt(size-i))
	}
	return total
}

func (s *Sampler) checkBatchSize(n int) error {
	if n <= 0 {
		return oops.
			Code("INVALID_BATCH_SIZE").
			With("requested", n).
			Errorf("batch size must be > 0")
	}
	if s.alpha.Len() < PasswordLength || big.NewInt(int64(n)).Cmp(s.FeasibleBound()) > 0 {
		return oops.
			Code("UNSATISFIABLE_BATCH_SIZE").
			With("requested", n, "bound", s.FeasibleBound().String()).
			Wrap(ErrUnsatisfiableBatchSize)
	}
	return nil
}

func (s *Sampler) exhausted(n, accepted int, attempts uint64) error {
	return oops.
		Code("UNSATISFIABLE_BATCH_SIZE").
		With("requested", n, "accepted", accepted, "attempts", attempts).
		Wrap(ErrUnsatisfiableBatchSize)
}

func (s *Sampler) fill(rnd *rand.Rand, buf []rune) {
	size := s.alpha.Len()
	for i := range buf {
		buf[i] = s.alpha.At(rnd.Intn(size))
	}
}

func (s *Sampler) report(p Progress) {
	if s.progress != nil {
		s.progress(p)
	}
}

func entropySeed() int64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
