package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"flowdocs/internal/models"
	"flowdocs/internal/portal/service"
	"flowdocs/internal/search"
	"flowdocs/pkg/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService implements PortalService with overridable behavior per test.
type stubService struct {
	searchFn       func(ctx context.Context, userID uint, query string) (*search.Result, error)
	welcomeFn      func(ctx context.Context) (string, error)
	deleteFolderFn func(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error
	loginFn        func(ctx context.Context, email, password string) (string, error)
	uploadFn       func(ctx context.Context, userID, folderID uint, title string, file *multipart.FileHeader) (*models.Document, error)
}

func (s *stubService) Register(ctx context.Context, email, password, username, department string) (*models.User, error) {
	u := &models.User{Username: username, Email: email}
	u.ID = 1
	return u, nil
}

func (s *stubService) Login(ctx context.Context, email, password string) (string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return "token", nil
}

func (s *stubService) WelcomeMessage(ctx context.Context) (string, error) {
	if s.welcomeFn != nil {
		return s.welcomeFn(ctx)
	}
	return "Welcome!", nil
}

func (s *stubService) Search(ctx context.Context, userID uint, query string) (*search.Result, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, userID, query)
	}
	return &search.Result{Answer: "ok", References: []search.Reference{}}, nil
}

func (s *stubService) CreateFolderPair(ctx context.Context, userID uint, categoryName, subcategoryName string) (*models.Folder, *models.Folder, error) {
	cat := &models.Folder{Name: categoryName}
	cat.ID = 1
	sub := &models.Folder{Name: subcategoryName}
	sub.ID = 2
	return cat, sub, nil
}

func (s *stubService) AddSubcategory(ctx context.Context, userID, parentID uint, name string) (*models.Folder, error) {
	sub := &models.Folder{Name: name}
	sub.ID = 3
	return sub, nil
}

func (s *stubService) DeleteFolder(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error {
	if s.deleteFolderFn != nil {
		return s.deleteFolderFn(ctx, operatorID, operatorRole, folderID)
	}
	return nil
}

func (s *stubService) UploadDocument(ctx context.Context, userID, folderID uint, title string, file *multipart.FileHeader) (*models.Document, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, userID, folderID, title, file)
	}
	doc := &models.Document{Title: title}
	doc.ID = 4
	return doc, nil
}

func (s *stubService) DeleteDocument(ctx context.Context, operatorID uint, operatorRole models.Role, id uint) error {
	return nil
}

func (s *stubService) ListUsers(ctx context.Context) ([]models.User, error) {
	return []models.User{}, nil
}

func (s *stubService) ToggleUserActive(ctx context.Context, id uint) (*models.User, error) {
	u := &models.User{Active: false}
	u.ID = id
	return u, nil
}

func (s *stubService) DeleteUser(ctx context.Context, operatorID uint, operatorRole models.Role, targetID uint) error {
	return nil
}

func newTestRouter(s *stubService) *gin.Engine {
	return SetupRouter(NewHandler(s), testSecret, logger.New("test", ""), nil)
}

func signToken(t *testing.T, userID uint, role models.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(userID),
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status OK, got %d", w.Code)
	}
}

func TestHealth_ReportsComponents(t *testing.T) {
	checks := map[string]Checker{
		"mysql": CheckerFunc(func(ctx context.Context) error { return nil }),
		"redis": CheckerFunc(func(ctx context.Context) error { return nil }),
	}
	router := SetupRouter(NewHandler(&stubService{}), testSecret, logger.New("test", ""), checks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"mysql":"ok"`) {
		t.Errorf("expected mysql component status, got %s", w.Body.String())
	}
}

func TestHealth_DegradedOnFailingCheck(t *testing.T) {
	checks := map[string]Checker{
		"mysql": CheckerFunc(func(ctx context.Context) error { return nil }),
		"redis": CheckerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}
	router := SetupRouter(NewHandler(&stubService{}), testSecret, logger.New("test", ""), checks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status ServiceUnavailable, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"degraded"`) {
		t.Errorf("expected degraded status, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("expected the failing component's error, got %s", w.Body.String())
	}
}

func TestSearchQuery_RequiresAuth(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status Unauthorized, got %d", w.Code)
	}
}

func TestSearchQuery_RejectsBadToken(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status Unauthorized, got %d", w.Code)
	}
}

func postForm(router *gin.Engine, token, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	return w
}

func TestSearchQuery_ReturnsAnswer(t *testing.T) {
	var gotUserID uint
	var gotQuery string
	stub := &stubService{
		searchFn: func(ctx context.Context, userID uint, query string) (*search.Result, error) {
			gotUserID, gotQuery = userID, query
			return &search.Result{
				Answer:     "The payroll deadline is the 25th.",
				References: []search.Reference{{Title: "payroll.pdf"}},
			}, nil
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 7, models.RoleMember)

	w := postForm(router, token, "/api/v1/search", url.Values{"query": {"payroll deadline"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d: %s", w.Code, w.Body.String())
	}
	if gotUserID != 7 || gotQuery != "payroll deadline" {
		t.Errorf("service called with userID=%d query=%q", gotUserID, gotQuery)
	}

	var result search.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Answer != "The payroll deadline is the 25th." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if len(result.References) != 1 || result.References[0].Title != "payroll.pdf" {
		t.Errorf("unexpected references %v", result.References)
	}
}

func TestSearchQuery_EmptyQuery(t *testing.T) {
	stub := &stubService{
		searchFn: func(ctx context.Context, userID uint, query string) (*search.Result, error) {
			return nil, service.ErrEmptyQuery
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 7, models.RoleMember)

	w := postForm(router, token, "/api/v1/search", url.Values{"query": {"   "}})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status BadRequest, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Query cannot be empty") {
		t.Errorf("expected the empty-query message, got %s", w.Body.String())
	}
}

func TestSearchPage_WelcomeMessage(t *testing.T) {
	stub := &stubService{
		welcomeFn: func(ctx context.Context) (string, error) {
			return "Welcome! Categories: Finance", nil
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 7, models.RoleMember)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Welcome! Categories: Finance") {
		t.Errorf("expected the welcome message, got %s", w.Body.String())
	}
}

func TestDeleteFolder_PermissionDenied(t *testing.T) {
	stub := &stubService{
		deleteFolderFn: func(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error {
			if !operatorRole.CanManageContent() {
				return service.ErrPermissionDenied
			}
			return nil
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 7, models.RoleMember)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/folders/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status Forbidden, got %d", w.Code)
	}
}

func TestDeleteFolder_AdminAllowed(t *testing.T) {
	stub := &stubService{
		deleteFolderFn: func(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error {
			if !operatorRole.CanManageContent() {
				return service.ErrPermissionDenied
			}
			return nil
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 1, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/folders/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status OK, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadDocument_CategoryTargetRejected(t *testing.T) {
	stub := &stubService{
		uploadFn: func(ctx context.Context, userID, folderID uint, title string, file *multipart.FileHeader) (*models.Document, error) {
			return nil, service.ErrCategoryUpload
		},
	}
	router := newTestRouter(stub)
	token := signToken(t, 7, models.RoleMember)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "doc")
	fw, err := mw.CreateFormFile("file", "doc.pdf")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	fw.Write([]byte("%PDF-1.4"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/folders/1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status BadRequest, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status BadRequest, got %d", w.Code)
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	stub := &stubService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			return "signed-jwt", nil
		},
	}
	router := newTestRouter(stub)

	body := `{"email":"user@example.com","password":"secret123"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "signed-jwt") {
		t.Errorf("expected the token in the response, got %s", w.Body.String())
	}
}
