// Package service implements the portal's business logic on top of the
// stores, the blob storage and the search pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"flowdocs/internal/config"
	"flowdocs/internal/database/kafka"
	"flowdocs/internal/extract"
	"flowdocs/internal/files"
	"flowdocs/internal/models"
	"flowdocs/internal/portal/store"
	"flowdocs/internal/search"
	"flowdocs/pkg/logger"
)

// Common errors surfaced to the API layer.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrCategoryUpload   = errors.New("documents can only be uploaded to a subcategory")
)

// FolderStore is the folder persistence the service depends on.
type FolderStore interface {
	GetOrCreate(ctx context.Context, name string, parentID *uint, createdByID uint) (*models.Folder, error)
	Get(ctx context.Context, id uint) (*models.Folder, error)
	Categories(ctx context.Context) ([]models.Folder, error)
	Delete(ctx context.Context, id uint) ([]string, error)
}

// DocumentStore is the document persistence the service depends on.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id uint) (*models.Document, error)
	ListByFolder(ctx context.Context, folderID uint) ([]models.Document, error)
	ListAll(ctx context.Context) ([]models.Document, error)
	UpdateContent(ctx context.Context, id uint, text string, keywords []string) error
	Delete(ctx context.Context, id uint) error
}

// Matcher scores candidates against a query.
type Matcher interface {
	Match(ctx context.Context, query string, candidates []search.Candidate) (string, []search.Reference)
}

// Answerer turns a question and its document context into an answer.
type Answerer interface {
	Answer(ctx context.Context, question, docContext string, references []search.Reference) string
}

// QueryCache remembers answered queries per user.
type QueryCache interface {
	Get(ctx context.Context, userID uint, query string) (*search.Result, bool)
	Set(ctx context.Context, userID uint, query string, result *search.Result) error
}

// QueryRouter decides the folder scope of a query.
type QueryRouter interface {
	Route(ctx context.Context, userID uint, query string) search.Route
}

// Service wires the portal's components together. All dependencies are
// injected so tests can substitute fakes.
type Service struct {
	log       *logger.Logger
	cfg       *config.AppConfig
	users     *store.UserStore
	folders   FolderStore
	documents DocumentStore
	storage   *files.Storage
	extractor *extract.Extractor
	keywords  *extract.KeywordExtractor
	detector  *extract.LanguageDetector
	matcher   Matcher
	answerer  Answerer
	cache     QueryCache
	router    QueryRouter
	audit     kafka.AuditPublisher
	jwtSecret []byte
}

// Deps bundles the constructor parameters of Service.
type Deps struct {
	Log       *logger.Logger
	Cfg       *config.AppConfig
	Users     *store.UserStore
	Folders   FolderStore
	Documents DocumentStore
	Storage   *files.Storage
	Extractor *extract.Extractor
	Keywords  *extract.KeywordExtractor
	Detector  *extract.LanguageDetector
	Matcher   Matcher
	Answerer  Answerer
	Cache     QueryCache
	Router    QueryRouter
	Audit     kafka.AuditPublisher
}

// New creates a Service.
func New(d Deps) *Service {
	audit := d.Audit
	if audit == nil {
		audit = kafka.NopPublisher{}
	}
	return &Service{
		log:       d.Log,
		cfg:       d.Cfg,
		users:     d.Users,
		folders:   d.Folders,
		documents: d.Documents,
		storage:   d.Storage,
		extractor: d.Extractor,
		keywords:  d.Keywords,
		detector:  d.Detector,
		matcher:   d.Matcher,
		answerer:  d.Answerer,
		cache:     d.Cache,
		router:    d.Router,
		audit:     audit,
		jwtSecret: []byte(d.Cfg.Auth.JwtSecret),
	}
}

// --- Registration and login ---

// Register creates a new member account.
func (s *Service) Register(ctx context.Context, email, password, username, department string) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		Password:   string(hashedPassword),
		Role:       models.RoleMember,
		Department: department,
		Active:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidLogin
	}
	if !user.Active {
		return "", ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidLogin
	}
	return s.generateJWT(user)
}

// generateJWT issues a token carrying the user ID and role.
func (s *Service) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(time.Duration(s.cfg.Auth.TokenTTL) * time.Second).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// --- User management ---

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// ToggleUserActive flips the active flag of a user.
func (s *Service) ToggleUserActive(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Active = !user.Active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Only superadmins may delete users, and
// never their own account.
func (s *Service) DeleteUser(ctx context.Context, operatorID uint, operatorRole models.Role, targetID uint) error {
	if operatorRole != models.RoleSuperAdmin {
		return ErrPermissionDenied
	}
	if operatorID == targetID {
		return fmt.Errorf("%w: cannot delete your own account", ErrPermissionDenied)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.users.Delete(ctx, targetID)
}
