package application

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-auth/internal/infrastructure/memory"
	"github.com/oksasatya/go-ecommerce-auth/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ecommerce-auth/pkg/mailer/templates"
)

func TestMain(m *testing.M) {
	helpers.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type sentMail struct {
	to, subject, text, html string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func (n *recordingNotifier) SendText(_ context.Context, to, subject, text, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to, subject, text, html})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no notification sent")
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	repo     *memory.UserRepository
	clock    *fakeClock
	tokens   *TokenService
	jwt      *helpers.JWTManager
	notifier *recordingNotifier
	auth     *AuthService
}

func newFixture(t *testing.T, mutate ...func(*AuthOptions)) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.NewUserRepository(),
		clock:    &fakeClock{t: time.Now()},
		jwt:      helpers.NewJWTManager("access-secret", "refresh-secret", 5*time.Minute, 24*time.Hour),
		notifier: &recordingNotifier{},
	}
	f.tokens = NewTokenService(f.repo, "test-secret", 24*time.Hour, 72*time.Hour).WithClock(f.clock.Now)
	opts := AuthOptions{
		Brand:              mailtpl.Brand{AppName: "Shop"},
		ActivationURL:      "http://shop.test/api/auth/activate",
		ResetPasswordURL:   "http://shop.test/api/auth/reset-password/",
		RequireActiveLogin: true,
	}
	for _, m := range mutate {
		m(&opts)
	}
	sessions := NewService(f.repo, f.jwt, nil, nil, nil)
	f.auth = NewAuthService(f.repo, f.tokens, sessions, f.notifier, nil, opts)
	return f
}

var (
	activationTokenRe = regexp.MustCompile(`token=([A-Za-z0-9_\-.]+)`)
	resetLinkRe       = regexp.MustCompile(`/reset-password/([A-Za-z0-9_\-]+)/([A-Za-z0-9_\-.]+)/`)
)

func activationTokenFrom(t *testing.T, m sentMail) string {
	t.Helper()
	match := activationTokenRe.FindStringSubmatch(m.html)
	require.Len(t, match, 2, "activation link not found in %q", m.html)
	return match[1]
}

func resetLinkFrom(t *testing.T, m sentMail) (ref, token string) {
	t.Helper()
	match := resetLinkRe.FindStringSubmatch(m.html)
	require.Len(t, match, 3, "reset link not found in %q", m.html)
	return match[1], match[2]
}

func (f *fixture) register(t *testing.T, email, password string) *entity.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{Email: email, Password: password, FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, err)
	return u
}

func (f *fixture) registerActive(t *testing.T, email, password string) *entity.User {
	t.Helper()
	u := f.register(t, email, password)
	_, err := f.auth.Activate(context.Background(), activationTokenFrom(t, f.notifier.last(t)))
	require.NoError(t, err)
	return u
}

func TestRegister_CreatesPendingUserAndSendsOneActivation(t *testing.T) {
	f := newFixture(t)

	u := f.register(t, "bob@Example.COM", "secret1")

	assert.False(t, u.IsActive)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.Password)

	stored, err := f.repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	require.Equal(t, 1, f.notifier.count())
	m := f.notifier.last(t)
	assert.Equal(t, "bob@example.com", m.to)
	assert.Equal(t, "Verify your email for Shop", m.subject)
	assert.Contains(t, m.html, "http://shop.test/api/auth/activate?token=")
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "123"})

	require.ErrorIs(t, err, ErrInvalidInput)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be a valid email", verr.Fields["email"])
	assert.Equal(t, "must be at least 6 characters long", verr.Fields["password"])
	assert.Zero(t, f.notifier.count())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "carol@example.com", "secret1")

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "carol@EXAMPLE.com", Password: "secret2"})

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, f.notifier.count())
}

func TestRegister_DispatchFailureKeepsUser(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	u, err := f.auth.Register(context.Background(), RegisterInput{Email: "dave@example.com", Password: "secret1"})

	require.ErrorIs(t, err, ErrDispatch)
	assert.Contains(t, err.Error(), "smtp down")
	require.NotNil(t, u)
	_, getErr := f.repo.GetByEmail(context.Background(), "dave@example.com")
	require.NoError(t, getErr)

	f.notifier.err = nil
	require.NoError(t, f.auth.ResendActivation(context.Background(), "dave@example.com"))
	_, err = f.auth.Activate(context.Background(), activationTokenFrom(t, f.notifier.last(t)))
	assert.NoError(t, err)
}

func TestResendActivation_Errors(t *testing.T) {
	f := newFixture(t)
	f.registerActive(t, "erin@example.com", "secret1")

	assert.ErrorIs(t, f.auth.ResendActivation(context.Background(), "erin@example.com"), ErrAlreadyVerified)
	assert.ErrorIs(t, f.auth.ResendActivation(context.Background(), "nobody@example.com"), ErrUserNotFound)
}

func TestActivate_OnceThenAlreadyVerified(t *testing.T) {
	f := newFixture(t)
	f.register(t, "frank@example.com", "secret1")
	token := activationTokenFrom(t, f.notifier.last(t))

	u, err := f.auth.Activate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	stored, _ := f.repo.GetByID(context.Background(), u.ID)
	assert.True(t, stored.IsActive)

	_, err = f.auth.Activate(context.Background(), token)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestActivate_ExpiredIsNeverMalformed(t *testing.T) {
	f := newFixture(t)
	f.register(t, "gina@example.com", "secret1")
	token := activationTokenFrom(t, f.notifier.last(t))

	f.clock.Advance(24*time.Hour + time.Second)

	_, err := f.auth.Activate(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenMalformed)
}

func TestActivate_MalformedTokens(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "hank@example.com", "secret1")
	token := activationTokenFrom(t, f.notifier.last(t))

	other := NewTokenService(f.repo, "another-secret", time.Hour, time.Hour)
	forged, _, err := other.IssueActivationToken(u)
	require.NoError(t, err)
	reset, _, err := f.tokens.IssueResetToken(u)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"tampered":     token[:len(token)-2] + "xx",
		"wrong secret": forged,
		"reset token":  reset,
	}
	for name, tok := range cases {
		_, err := f.auth.Activate(context.Background(), tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, name)
	}
}

func TestActivate_UnknownUser(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.tokens.IssueActivationToken(&entity.User{ID: uuid.NewString()})
	require.NoError(t, err)

	_, err = f.auth.Activate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivate_ConcurrentCallsFlipOnce(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ivy@example.com", "secret1")
	token := activationTokenFrom(t, f.notifier.last(t))

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Activate(context.Background(), token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	}
	assert.Equal(t, 1, ok)
}

func TestLogin_RequiresActiveAccountByDefault(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jack@example.com", "secret1")

	_, err := f.auth.Login(context.Background(), "jack@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountNotActive)
}

func TestLogin_PendingAllowedWhenGatingDisabled(t *testing.T) {
	f := newFixture(t, func(o *AuthOptions) { o.RequireActiveLogin = false })
	f.register(t, "kate@example.com", "secret1")

	res, err := f.auth.Login(context.Background(), "kate@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, res.User.IsActive)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.registerActive(t, "liam@example.com", "secret1")

	_, err := f.auth.Login(context.Background(), "liam@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssuesBoundCredentialPair(t *testing.T) {
	f := newFixture(t)
	u := f.registerActive(t, "mia@example.com", "secret1")

	res, err := f.auth.Login(context.Background(), "mia@example.com", "secret1")
	require.NoError(t, err)

	access, err := f.jwt.ParseAccessToken(res.Tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ParseRefreshToken(res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, access.UserID)
	assert.Equal(t, u.ID, refresh.UserID)
	assert.True(t, res.Tokens.RefreshTokenExpiry.After(res.Tokens.AccessTokenExpiry))
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.auth.RequestPasswordReset(context.Background(), "ghost@example.com"), ErrUserNotFound)

	uniform := newFixture(t, func(o *AuthOptions) { o.UniformResetResponse = true })
	assert.NoError(t, uniform.auth.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Zero(t, uniform.notifier.count())
}

func TestRequestPasswordReset_LinkShape(t *testing.T) {
	f := newFixture(t)
	u := f.registerActive(t, "nina@example.com", "secret1")

	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), "nina@example.com"))

	m := f.notifier.last(t)
	assert.Equal(t, "Password Reset", m.subject)
	ref, token := resetLinkFrom(t, m)
	assert.Equal(t, helpers.EncodeUserRef(u.ID), ref)
	assert.Contains(t, m.html, "http://shop.test/api/auth/reset-password/"+ref+"/"+token+"/")

	ok, err := f.tokens.VerifyResetToken(u, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetToken_InvalidatedByPasswordChange(t *testing.T) {
	f := newFixture(t)
	u := f.registerActive(t, "omar@example.com", "secret1")
	stored, _ := f.repo.GetByID(context.Background(), u.ID)

	token, _, err := f.tokens.IssueResetToken(stored)
	require.NoError(t, err)
	ok, err := f.tokens.VerifyResetToken(stored, token)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.auth.ConfirmPasswordReset(context.Background(), ConfirmResetInput{
		UserRef: helpers.EncodeUserRef(u.ID), Token: token, NewPassword: "newpass1", ConfirmPassword: "newpass1",
	}))

	updated, _ := f.repo.GetByID(context.Background(), u.ID)
	ok, err = f.tokens.VerifyResetToken(updated, token)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.auth.ConfirmPasswordReset(context.Background(), ConfirmResetInput{
		UserRef: helpers.EncodeUserRef(u.ID), Token: token, NewPassword: "again123", ConfirmPassword: "again123",
	})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyResetToken_Outcomes(t *testing.T) {
	f := newFixture(t)
	a := f.registerActive(t, "pia@example.com", "secret1")
	b := f.registerActive(t, "quinn@example.com", "secret1")
	a, _ = f.repo.GetByID(context.Background(), a.ID)
	b, _ = f.repo.GetByID(context.Background(), b.ID)

	token, _, err := f.tokens.IssueResetToken(a)
	require.NoError(t, err)

	ok, err := f.tokens.VerifyResetToken(b, token)
	assert.NoError(t, err, "wrong user")
	assert.False(t, ok)

	ok, err = f.tokens.VerifyResetToken(a, "abc")
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.False(t, ok)

	f.clock.Advance(72*time.Hour + time.Second)
	ok, err = f.tokens.VerifyResetToken(a, token)
	assert.NoError(t, err, "expired")
	assert.False(t, ok)
}

func TestConfirmPasswordReset_MismatchLeavesHash(t *testing.T) {
	f := newFixture(t)
	u := f.registerActive(t, "rita@example.com", "secret1")
	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), "rita@example.com"))
	ref, token := resetLinkFrom(t, f.notifier.last(t))
	before, _ := f.repo.GetByID(context.Background(), u.ID)

	err := f.auth.ConfirmPasswordReset(context.Background(), ConfirmResetInput{
		UserRef: ref, Token: token, NewPassword: "newpass1", ConfirmPassword: "newpass2",
	})

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	after, _ := f.repo.GetByID(context.Background(), u.ID)
	assert.Equal(t, before.Password, after.Password)
}

func TestConfirmPasswordReset_Errors(t *testing.T) {
	f := newFixture(t)
	f.registerActive(t, "sam@example.com", "secret1")
	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), "sam@example.com"))
	ref, token := resetLinkFrom(t, f.notifier.last(t))

	cases := []struct {
		name string
		in   ConfirmResetInput
		want error
	}{
		{"undecodable ref", ConfirmResetInput{UserRef: "%%%", Token: token, NewPassword: "newpass1", ConfirmPassword: "newpass1"}, ErrInvalidToken},
		{"unknown user", ConfirmResetInput{UserRef: helpers.EncodeUserRef(uuid.NewString()), Token: token, NewPassword: "newpass1", ConfirmPassword: "newpass1"}, ErrUserNotFound},
		{"bad token", ConfirmResetInput{UserRef: ref, Token: "abc", NewPassword: "newpass1", ConfirmPassword: "newpass1"}, ErrInvalidToken},
		{"short password", ConfirmResetInput{UserRef: ref, Token: token, NewPassword: "abc", ConfirmPassword: "abc"}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, f.auth.ConfirmPasswordReset(context.Background(), tc.in), tc.want)
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.registerActive(t, "tess@example.com", "secret1")
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.ChangePassword(ctx, u.ID, "wrong", "newpass1", "newpass1"), ErrInvalidCredentials)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, u.ID, "secret1", "newpass1", "newpass2"), ErrPasswordMismatch)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, u.ID, "secret1", "x", "x"), ErrInvalidInput)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, uuid.NewString(), "secret1", "newpass1", "newpass1"), ErrUserNotFound)

	require.NoError(t, f.auth.ChangePassword(ctx, u.ID, "secret1", "newpass1", "newpass1"))

	_, err := f.auth.Login(ctx, "tess@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "tess@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestAliceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, "alice@example.com", f.notifier.last(t).to)

	activated, err := f.auth.Activate(ctx, activationTokenFrom(t, f.notifier.last(t)))
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	res, err := f.auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	require.NoError(t, f.auth.RequestPasswordReset(ctx, "alice@example.com"))
	require.Equal(t, 2, f.notifier.count())
	ref, token := resetLinkFrom(t, f.notifier.last(t))
	assert.Equal(t, helpers.EncodeUserRef(u.ID), ref)

	require.NoError(t, f.auth.ConfirmPasswordReset(ctx, ConfirmResetInput{
		UserRef: ref, Token: token, NewPassword: "newpass1", ConfirmPassword: "newpass1",
	}))

	_, err = f.auth.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "alice@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Bob@example.com", NormalizeEmail("  Bob@EXAMPLE.com "))
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "is required", "email": "is required"}}
	assert.Equal(t, "invalid input: email is required; password is required", err.Error())
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	long := strings.Repeat("é", 40) // 40 runes, 80 bytes

	t.Run("register", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(context.Background(), RegisterInput{Email: "multi@example.com", Password: long})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, "must be at most 72 bytes long", verr.Fields["password"])
		_, getErr := f.repo.GetByEmail(context.Background(), "multi@example.com")
		assert.Error(t, getErr)
	})

	t.Run("change", func(t *testing.T) {
		f := newFixture(t)
		u := f.registerActive(t, "multi@example.com", "secret1")

		err := f.auth.ChangePassword(context.Background(), u.ID, "secret1", long, long)

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("reset", func(t *testing.T) {
		f := newFixture(t)
		u := f.registerActive(t, "multi@example.com", "secret1")
		require.NoError(t, f.auth.RequestPasswordReset(context.Background(), u.Email))
		ref, tok := resetLinkFrom(t, f.notifier.last(t))
		before, _ := f.repo.GetByID(context.Background(), u.ID)

		err := f.auth.ConfirmPasswordReset(context.Background(), ConfirmResetInput{UserRef: ref, Token: tok, NewPassword: long, ConfirmPassword: long})

		assert.ErrorIs(t, err, ErrInvalidInput)
		after, _ := f.repo.GetByID(context.Background(), u.ID)
		assert.Equal(t, before.Password, after.Password)
	})

	t.Run("short multibyte passes", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "multi@example.com", strings.Repeat("é", 30))
	})
}

// activatingRepo runs hook right before a password write lands.
type activatingRepo struct {
	*memory.UserRepository
	hook func()
}

func (r *activatingRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	if r.hook != nil {
		r.hook()
	}
	return r.UserRepository.UpdatePassword(ctx, id, hash)
}

func TestConfirmPasswordReset_KeepsConcurrentActivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "pending@example.com", "secret1")
	activation := activationTokenFrom(t, f.notifier.last(t))

	require.NoError(t, f.auth.RequestPasswordReset(ctx, u.Email))
	ref, tok := resetLinkFrom(t, f.notifier.last(t))

	repo := &activatingRepo{UserRepository: f.repo}
	repo.hook = func() {
		_, err := f.auth.Activate(ctx, activation)
		require.NoError(t, err)
	}
	f.auth.Repo = repo

	require.NoError(t, f.auth.ConfirmPasswordReset(ctx, ConfirmResetInput{UserRef: ref, Token: tok, NewPassword: "newpass1", ConfirmPassword: "newpass1"}))

	stored, err := f.repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "newpass1"))
}

func TestNotifications_CarryRenderedTextAndClockTime(t *testing.T) {
	f := newFixture(t)
	f.clock.t = time.Date(2030, time.January, 2, 3, 4, 0, 0, time.UTC)
	u := f.registerActive(t, "clock@example.com", "secret1")

	m := f.notifier.last(t)
	assert.Contains(t, m.text, "Confirm your email address")
	assert.Contains(t, m.text, "http://shop.test/api/auth/activate?token=")

	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), u.Email))
	m = f.notifier.last(t)
	assert.Contains(t, m.html, "Requested on 02 January 2030, 03:04 UTC")
	assert.Contains(t, m.text, "Requested on 02 January 2030, 03:04 UTC")
	assert.Contains(t, m.text, "The link expires on 05 January 2030, 03:04 UTC.")
}
