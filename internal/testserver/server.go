package testserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/pkg/token"
)

// Request is one recorded backend request.
type Request struct {
	Endpoint      string
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// JSON decodes the recorded body into a generic map.
func (r Request) JSON() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Body, &m)
	return m
}

type failure struct {
	status int
	body   any
}

type user struct {
	password    string
	displayName string
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// Server is a fake cricket backend.
type Server struct {
	*httptest.Server
	Echo *echo.Echo

	// OTPCode is the code texted and echoed by requestOtp.
	OTPCode string
	// IDToken is the only identity token loginWithIdToken accepts.
	IDToken string

	secret []byte

	mu       sync.Mutex
	requests []Request
	failures map[string]failure
	users    map[string]user
	matches  map[string]domain.Match
	invites  map[string]domain.Invite
	seq      int
}

// New starts a Server. Call Close when done.
func New() *Server {
	return start(httptest.NewServer)
}

// NewTLS starts a Server on HTTPS with a self-signed certificate.
func NewTLS() *Server {
	return start(httptest.NewTLSServer)
}

func start(serve func(http.Handler) *httptest.Server) *Server {
	s := &Server{
		OTPCode:  "123456",
		IDToken:  "google-id-token",
		secret:   []byte("testserver-secret"),
		failures: make(map[string]failure),
		users:    make(map[string]user),
		matches:  make(map[string]domain.Match),
		invites:  make(map[string]domain.Invite),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(echomiddleware.Recover())

	handlers := map[string]echo.HandlerFunc{
		domain.EndpointRegister.Name:         s.register,
		domain.EndpointEmailLogin.Name:       s.emailLogin,
		domain.EndpointRequestOTP.Name:       s.requestOTP,
		domain.EndpointVerifyOTP.Name:        s.verifyOTP,
		domain.EndpointLoginWithIDToken.Name: s.loginWithIDToken,
		domain.EndpointCreateMatch.Name:      s.authed(s.createMatch),
		domain.EndpointListMatches.Name:      s.listMatches,
		domain.EndpointDeleteMatch.Name:      s.authed(s.deleteMatch),
		domain.EndpointGetMatchScore.Name:    s.matchScore,
		domain.EndpointToss.Name:             s.authed(s.toss),
		domain.EndpointSendInvite.Name:       s.authed(s.sendInvite),
		domain.EndpointListInvites.Name:      s.authed(s.listInvites),
		domain.EndpointRespondInvite.Name:    s.authed(s.respondInvite),
	}
	for _, ep := range domain.Endpoints {
		path := strings.ReplaceAll(ep.Path, "{id}", ":id")
		e.Add(ep.Method, path, s.record(ep.Name, handlers[ep.Name]))
	}

	s.Echo = e
	s.Server = serve(e)
	return s
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent request to the named endpoint.
func (s *Server) Last(endpoint string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Endpoint == endpoint {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// Fail makes every later request to endpoint answer status with body.
// A string body is wrapped as {"error": body}.
func (s *Server) Fail(endpoint string, status int, body any) {
	if msg, ok := body.(string); ok {
		body = errorResponse{Error: msg}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = failure{status: status, body: body}
}

// AddUser registers an email/password account.
func (s *Server) AddUser(email, password, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(email)] = user{password: password, displayName: displayName}
}

// AddMatch stores a match and returns its id.
func (s *Server) AddMatch(m domain.Match) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = s.nextID("m")
	}
	s.matches[m.ID] = m
	return m.ID
}

// AddInvite stores an invite and returns its id.
func (s *Server) AddInvite(inv domain.Invite) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = s.nextID("i")
	}
	if inv.Status == "" {
		inv.Status = "pending"
	}
	s.invites[inv.ID] = inv
	return inv.ID
}

// Matches returns the stored matches ordered by id.
func (s *Server) Matches() []domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedMatches()
}

// Invite returns a stored invite.
func (s *Server) Invite(id string) (domain.Invite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	return inv, ok
}

// IssueToken signs a session token for subject.
func (s *Server) IssueToken(subject string) string {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *Server) sortedMatches() []domain.Match {
	out := make([]domain.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================================
// Middleware
// ============================================================================

func (s *Server) record(name string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Endpoint:      name,
			Method:        req.Method,
			Path:          req.URL.Path,
			Authorization: req.Header.Get(echo.HeaderAuthorization),
			RequestID:     req.Header.Get(echo.HeaderXRequestID),
			Body:          body,
		})
		f, failing := s.failures[name]
		s.mu.Unlock()

		if failing {
			if f.body == nil {
				return c.NoContent(f.status)
			}
			return c.JSON(f.status, f.body)
		}
		return next(c)
	}
}

func (s *Server) authed(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		sub, _ := claims.GetSubject()
		c.Set("subject", sub)
		return next(c)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "Server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code, msg = he.Code, fmt.Sprintf("%v", he.Message)
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}

func bad(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ============================================================================
// Auth
// ============================================================================

func (s *Server) register(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return bad("Email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.users[key]; exists {
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	}
	s.users[key] = user{password: req.Password, displayName: req.DisplayName}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered"})
}

func (s *Server) emailLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || !token.Equal(u.password, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return c.JSON(http.StatusOK, domain.AuthResult{Token: s.IssueToken(req.Email), DisplayName: u.displayName})
}

func (s *Server) requestOTP(c echo.Context) error {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.PhoneNumber == "" {
		return bad("Phone number is required")
	}
	return c.JSON(http.StatusOK, domain.OTPChallenge{Message: "OTP sent", Code: s.OTPCode})
}

func (s *Server) verifyOTP(c echo.Context) error {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		OTP         string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if !token.Equal(req.OTP, s.OTPCode) {
		return bad("Invalid OTP")
	}
	return c.JSON(http.StatusOK, domain.AuthResult{Token: s.IssueToken(req.PhoneNumber), DisplayName: req.PhoneNumber})
}

func (s *Server) loginWithIDToken(c echo.Context) error {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if !token.Equal(req.IDToken, s.IDToken) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid ID token")
	}
	return c.JSON(http.StatusOK, domain.AuthResult{Token: s.IssueToken("google-user"), DisplayName: "Google User"})
}

// ============================================================================
// Matches
// ============================================================================

func (s *Server) createMatch(c echo.Context) error {
	var m domain.Match
	if err := c.Bind(&m); err != nil {
		return err
	}
	if m.Format == "" || m.Date == "" || m.Location == "" {
		return bad("Missing fields")
	}
	m.ID = ""
	id := s.AddMatch(m)
	m.ID = id
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) listMatches(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Matches())
}

func (s *Server) deleteMatch(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Match not found")
	}
	delete(s.matches, id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Match deleted"})
}

func (s *Server) matchScore(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.matches[id]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Match not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"matchId": id, "runs": 0, "wickets": 0, "overs": 0})
}

func (s *Server) toss(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.matches[id]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Match not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"matchId": id, "winner": "home", "decision": "bat"})
}

// ============================================================================
// Invites
// ============================================================================

func (s *Server) sendInvite(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Username == "" {
		return bad("Username is required")
	}

	s.mu.Lock()
	_, ok := s.matches[id]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Match not found")
	}
	from, _ := c.Get("subject").(string)
	s.AddInvite(domain.Invite{MatchID: id, From: from})
	return c.JSON(http.StatusOK, map[string]string{"message": "Invite sent"})
}

func (s *Server) listInvites(c echo.Context) error {
	s.mu.Lock()
	out := make([]domain.Invite, 0, len(s.invites))
	for _, inv := range s.invites {
		out = append(out, inv)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) respondInvite(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Invite not found")
	}
	inv.Status = "declined"
	if req.Accept {
		inv.Status = "accepted"
	}
	s.invites[id] = inv
	return c.JSON(http.StatusOK, map[string]string{"message": "Invite " + inv.Status})
}
