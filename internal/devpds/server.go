// Package devpds is an in-memory PDS speaking the XRPC subset the
// fypapp client consumes. It stands in for the real data store during
// development and in package tests; nothing it holds survives the
// process.
package devpds

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

const (
	minPasswordLen  = 8
	defaultPageSize = 10
	maxPageSize     = 100
	recentWindow    = 7 * 24 * time.Hour
)

type Server struct {
	store  *Store
	tokens *TokenIssuer
	log    zerolog.Logger
}

func New(secret string, log zerolog.Logger) *Server {
	return &Server{
		store:  NewStore(),
		tokens: NewTokenIssuer(secret),
		log:    log,
	}
}

// Store exposes the backing state for test seeding.
func (s *Server) Store() *Store {
	return s.store
}

// Routes registers every XRPC endpoint on the echo instance.
func (s *Server) Routes(e *echo.Echo) {
	e.POST("/xrpc/"+lexicons.CreateAccount, s.handleCreateAccount)
	e.POST("/xrpc/"+lexicons.CreateSession, s.handleCreateSession)
	e.POST("/xrpc/"+lexicons.CreateRecord, s.handleCreateRecord)
	e.GET("/xrpc/"+lexicons.GetRecord, s.handleGetRecord)
	e.GET("/xrpc/"+lexicons.ListRecords, s.handleListRecords)
	e.GET("/xrpc/"+lexicons.GetProfile, s.handleGetProfile)
	e.POST("/xrpc/"+lexicons.UpdateProfile, s.handleUpdateProfile)
	e.GET("/xrpc/"+lexicons.Discover, s.handleDiscover)
}

// Handler builds a ready-to-serve echo instance with the standard
// middleware stack.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	s.Routes(e)
	return e
}

func xrpcErr(c echo.Context, status int, name, message string) error {
	return c.JSON(status, echo.Map{"error": name, "message": message})
}

// authenticate resolves the bearer token of a request to a DID.
func (s *Server) authenticate(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	split := strings.Split(header, " ")
	if len(split) != 2 || split[0] != "Bearer" {
		return "", errors.New("only Bearer is acceptable")
	}
	did, err := s.tokens.Verify(split[1])
	if err != nil {
		return "", errors.Wrap(err, "token rejected")
	}
	return did, nil
}

func (s *Server) handleCreateAccount(c echo.Context) error {
	var req struct {
		Handle   string `json:"handle"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", err.Error())
	}
	if req.Handle == "" {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "handle is required")
	}
	if len(req.Password) < minPasswordLen {
		return xrpcErr(c, http.StatusBadRequest, "WeakPassword", "password is too short")
	}

	account, err := s.store.CreateAccount(req.Handle, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			return xrpcErr(c, http.StatusBadRequest, "AlreadyExists", "account already exists")
		}
		return xrpcErr(c, http.StatusInternalServerError, "InternalError", err.Error())
	}

	token, err := s.tokens.Issue(account.DID)
	if err != nil {
		return xrpcErr(c, http.StatusInternalServerError, "InternalError", err.Error())
	}

	s.log.Info().Str("did", account.DID).Str("handle", account.Handle).Msg("account created")
	return c.JSON(http.StatusOK, echo.Map{
		"did":       account.DID,
		"handle":    account.Handle,
		"accessJwt": token,
	})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", err.Error())
	}

	account, err := s.store.Authenticate(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, ErrNoAccount) {
			return xrpcErr(c, http.StatusUnauthorized, "AccountNotFound", "no account for identifier")
		}
		return xrpcErr(c, http.StatusUnauthorized, "AuthenticationRequired", "invalid identifier or password")
	}

	token, err := s.tokens.Issue(account.DID)
	if err != nil {
		return xrpcErr(c, http.StatusInternalServerError, "InternalError", err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"did":       account.DID,
		"handle":    account.Handle,
		"accessJwt": token,
	})
}

func (s *Server) handleCreateRecord(c echo.Context) error {
	did, err := s.authenticate(c)
	if err != nil {
		return xrpcErr(c, http.StatusUnauthorized, "AuthenticationRequired", err.Error())
	}

	var req struct {
		Repo       string         `json:"repo"`
		Collection string         `json:"collection"`
		RKey       string         `json:"rkey"`
		Record     map[string]any `json:"record"`
	}
	if err := c.Bind(&req); err != nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", err.Error())
	}
	if req.Repo == "" || req.Collection == "" || req.Record == nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "repo, collection and record are required")
	}
	if req.Repo != did {
		return xrpcErr(c, http.StatusForbidden, "Forbidden", "cannot write into another repo")
	}

	rkey := req.RKey
	if rkey == "" {
		rkey = uuid.NewString()[:13]
	}

	ref, err := s.store.PutRecord(req.Repo, req.Collection, rkey, req.Record, false)
	if err != nil {
		if errors.Is(err, ErrRecordExists) {
			return xrpcErr(c, http.StatusConflict, "RecordAlreadyExists", "record already exists at "+rkey)
		}
		return xrpcErr(c, http.StatusInternalServerError, "InternalError", err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"uri": ref.URI, "cid": ref.CID})
}

func (s *Server) handleGetRecord(c echo.Context) error {
	repo := c.QueryParam("repo")
	collection := c.QueryParam("collection")
	rkey := c.QueryParam("rkey")
	if repo == "" || collection == "" || rkey == "" {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "repo, collection and rkey are required")
	}

	rec, err := s.store.GetRecord(repo, collection, rkey)
	if err != nil {
		return xrpcErr(c, http.StatusNotFound, "RecordNotFound", "could not locate record")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"uri":   rec.URI,
		"cid":   rec.CID,
		"value": rec.Value,
	})
}

func (s *Server) handleListRecords(c echo.Context) error {
	repo := c.QueryParam("repo")
	collection := c.QueryParam("collection")
	if repo == "" || collection == "" {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "repo and collection are required")
	}

	limit := defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "invalid limit")
		}
		limit = min(parsed, maxPageSize)
	}

	records := s.store.ListRecords(repo, collection, limit)
	out := make([]echo.Map, 0, len(records))
	for _, rec := range records {
		out = append(out, echo.Map{
			"uri":   rec.URI,
			"cid":   rec.CID,
			"value": rec.Value,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"records": out})
}

func (s *Server) handleGetProfile(c echo.Context) error {
	actor := c.QueryParam("actor")
	if actor == "" {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "actor is required")
	}

	rec, err := s.store.GetRecord(actor, lexicons.Profile, lexicons.RKeySelf)
	if err != nil {
		return xrpcErr(c, http.StatusNotFound, "RecordNotFound", "profile not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile": rec.Value,
		"uri":     rec.URI,
		"cid":     rec.CID,
	})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	did, err := s.authenticate(c)
	if err != nil {
		return xrpcErr(c, http.StatusUnauthorized, "AuthenticationRequired", err.Error())
	}

	var req struct {
		Profile map[string]any `json:"profile"`
	}
	if err := c.Bind(&req); err != nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", err.Error())
	}
	if req.Profile == nil {
		return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "profile is required")
	}

	ref, err := s.store.PutRecord(did, lexicons.Profile, lexicons.RKeySelf, req.Profile, true)
	if err != nil {
		return xrpcErr(c, http.StatusInternalServerError, "InternalError", err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"uri": ref.URI, "cid": ref.CID})
}

func (s *Server) handleDiscover(c echo.Context) error {
	limit := defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "invalid limit")
		}
		limit = min(parsed, maxPageSize)
	}

	offset := 0
	if raw := c.QueryParam("cursor"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return xrpcErr(c, http.StatusBadRequest, "InvalidRequest", "invalid cursor")
		}
		offset = parsed
	}

	viewer := c.QueryParam("viewer")
	cards := s.candidateCards(viewer)

	if offset >= len(cards) {
		return c.JSON(http.StatusOK, echo.Map{"profiles": []echo.Map{}})
	}

	end := min(offset+limit, len(cards))
	page := cards[offset:end]

	resp := echo.Map{"profiles": page}
	if end < len(cards) {
		resp["cursor"] = strconv.Itoa(end)
	}
	return c.JSON(http.StatusOK, resp)
}

// candidateCards assembles the discover result set: every account
// with a published profile, minus the viewer and anyone the viewer
// already swiped on, with overlap-based ranking metadata when the
// viewer has a profile of their own.
func (s *Server) candidateCards(viewer string) []echo.Map {
	var viewerInterests map[string]bool
	swiped := map[string]bool{}

	if viewer != "" {
		if rec, err := s.store.GetRecord(viewer, lexicons.Profile, lexicons.RKeySelf); err == nil {
			viewerInterests = map[string]bool{}
			for _, interest := range fypapp.DecodeProfile(rec.Value).Interests {
				viewerInterests[interest] = true
			}
		}
		for _, rec := range s.store.ListRecords(viewer, lexicons.Like, 0) {
			swiped[fypapp.DecodeLike(rec.Value).Subject] = true
		}
		for _, rec := range s.store.ListRecords(viewer, lexicons.Pass, 0) {
			swiped[fypapp.DecodePass(rec.Value).Subject] = true
		}
	}

	var cards []echo.Map
	for _, account := range s.store.Accounts() {
		if account.DID == viewer || swiped[account.DID] {
			continue
		}
		rec, err := s.store.GetRecord(account.DID, lexicons.Profile, lexicons.RKeySelf)
		if err != nil {
			continue
		}

		card := echo.Map{
			"did":     account.DID,
			"profile": rec.Value,
		}

		profile := fypapp.DecodeProfile(rec.Value)
		if profile.UpdatedAt != nil {
			if updated, err := time.Parse(time.RFC3339, *profile.UpdatedAt); err == nil {
				card["recentlyActive"] = time.Since(updated) < recentWindow
			}
		}
		if viewerInterests != nil {
			var common []string
			for _, interest := range profile.Interests {
				if viewerInterests[interest] {
					common = append(common, interest)
				}
			}
			if len(common) > 0 {
				card["commonInterests"] = common
				card["matchScore"] = len(common) * 10
			}
		}

		cards = append(cards, card)
	}
	return cards
}
