// Package datagen produces request bodies and primitive values for test
// cases. A Generator is safe for concurrent use; seeded generators repeat
// their sequence so failures can be reproduced.
package datagen

import (
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/hk1947/apicontract/internal/model"
)

// Fixed credentials accepted by the demo API.
const (
	ValidEmail       = "eve.holt@reqres.in"
	LoginPassword    = "cityslicka"
	RegisterPassword = "pistol"
)

// Credential is an email/password pair.
type Credential struct {
	Email    string
	Password string
}

// knownEmails is the demo API's registered-user allowlist, ordered by id.
var knownEmails = []string{
	"george.bluth@reqres.in",
	"janet.weaver@reqres.in",
	"emma.wong@reqres.in",
	"eve.holt@reqres.in",
	"charles.morris@reqres.in",
	"tracey.ramos@reqres.in",
	"michael.lawson@reqres.in",
	"lindsay.ferguson@reqres.in",
	"tobias.funke@reqres.in",
	"byron.fields@reqres.in",
	"george.edwards@reqres.in",
	"rachel.howell@reqres.in",
}

// KnownEmails returns a copy of the allowlist.
func KnownEmails() []string {
	return append([]string(nil), knownEmails...)
}

// KnownCredentials pairs every allowlisted email with the login password.
func KnownCredentials() []Credential {
	out := make([]Credential, len(knownEmails))
	for i, e := range knownEmails {
		out[i] = Credential{Email: e, Password: LoginPassword}
	}
	return out
}

// IsKnownEmail reports whether email is on the allowlist.
func IsKnownEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range knownEmails {
		if e == email {
			return true
		}
	}
	return false
}

type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	seed  uint64
}

// New returns a randomly seeded generator.
func New() *Generator { return &Generator{faker: gofakeit.New(0)} }

// NewSeeded returns a generator whose sequence is fixed by seed. A zero seed
// is random.
func NewSeeded(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed), seed: seed}
}

// Seed is the seed the generator was built with, 0 when random.
func (g *Generator) Seed() uint64 { return g.seed }

func (g *Generator) with(fn func(f *gofakeit.Faker) string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.faker)
}

// User returns a create/update body with a random name and job title.
func (g *Generator) User() model.User {
	return model.NewUser(g.FullName(), g.JobTitle())
}

func (g *Generator) UserWith(name, job string) model.User {
	return model.NewUser(name, job)
}

// FullUser populates every writable field.
func (g *Generator) FullUser() model.User {
	u := model.NewProfile(g.Email(), g.FirstName(), g.LastName())
	u.Name = model.String(g.FullName())
	u.Job = model.String(g.JobTitle())
	return u
}

func (g *Generator) ValidLogin() model.LoginRequest {
	return model.NewLogin(ValidEmail, LoginPassword)
}

func (g *Generator) ValidRegistration() model.LoginRequest {
	return model.NewLogin(ValidEmail, RegisterPassword)
}

// InvalidLogin returns credentials for an address outside the allowlist.
func (g *Generator) InvalidLogin() model.LoginRequest {
	email := g.Email()
	for IsKnownEmail(email) {
		email = g.Email()
	}
	return model.NewLogin(email, g.Password())
}

func (g *Generator) LoginWithoutPassword() model.LoginRequest {
	return model.LoginRequest{Email: model.String(ValidEmail)}
}

func (g *Generator) Email() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Email() })
}

// UniqueEmail is test_<8 hex chars>@test.com and never repeats within a run,
// regardless of the seed.
func (g *Generator) UniqueEmail() string {
	return "test_" + uuid.NewString()[:8] + "@test.com"
}

// Password is 8 to 20 characters of letters, digits and symbols.
func (g *Generator) Password() string {
	return g.with(func(f *gofakeit.Faker) string {
		return f.Password(true, true, true, true, false, f.IntRange(8, 20))
	})
}

func (g *Generator) FirstName() string {
	return g.with(func(f *gofakeit.Faker) string { return f.FirstName() })
}

func (g *Generator) LastName() string {
	return g.with(func(f *gofakeit.Faker) string { return f.LastName() })
}

func (g *Generator) FullName() string {
	return g.with(func(f *gofakeit.Faker) string { return f.FirstName() + " " + f.LastName() })
}

func (g *Generator) Phone() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Phone() })
}

func (g *Generator) JobTitle() string {
	return g.with(func(f *gofakeit.Faker) string { return f.JobTitle() })
}

func (g *Generator) Company() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Company() })
}

func (g *Generator) Street() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Street() })
}

func (g *Generator) City() string {
	return g.with(func(f *gofakeit.Faker) string { return f.City() })
}

func (g *Generator) Country() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Country() })
}

func (g *Generator) Zip() string {
	return g.with(func(f *gofakeit.Faker) string { return f.Zip() })
}

// Int returns a value in [lo, hi]. Swapped bounds are reordered.
func (g *Generator) Int(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.IntRange(lo, hi)
}

// Int64 returns any 64-bit value.
func (g *Generator) Int64() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Int64()
}

// Sentence returns words random words ending in a period. Values below one
// give a single word.
func (g *Generator) Sentence(words int) string {
	if words < 1 {
		words = 1
	}
	return g.with(func(f *gofakeit.Faker) string { return f.Sentence(words) })
}

// Paragraph returns sentences random sentences of about ten words each.
func (g *Generator) Paragraph(sentences int) string {
	if sentences < 1 {
		sentences = 1
	}
	return g.with(func(f *gofakeit.Faker) string { return f.Paragraph(1, sentences, 10, " ") })
}

// UUID follows the generator's seed.
func (g *Generator) UUID() string {
	return g.with(func(f *gofakeit.Faker) string { return f.UUID() })
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Alphanumeric returns n characters from [A-Za-z0-9].
func (g *Generator) Alphanumeric(n int) string {
	if n <= 0 {
		return ""
	}
	return g.with(func(f *gofakeit.Faker) string {
		var b strings.Builder
		b.Grow(n)
		for i := 0; i < n; i++ {
			b.WriteByte(alphanumeric[f.IntRange(0, len(alphanumeric)-1)])
		}
		return b.String()
	})
}
