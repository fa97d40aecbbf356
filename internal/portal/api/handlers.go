package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flowdocs/internal/models"
	"flowdocs/internal/portal/service"
	"flowdocs/internal/search"
)

// PortalService is the slice of the service layer the handlers depend on.
type PortalService interface {
	Register(ctx context.Context, email, password, username, department string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)

	WelcomeMessage(ctx context.Context) (string, error)
	Search(ctx context.Context, userID uint, query string) (*search.Result, error)

	CreateFolderPair(ctx context.Context, userID uint, categoryName, subcategoryName string) (*models.Folder, *models.Folder, error)
	AddSubcategory(ctx context.Context, userID, parentID uint, name string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, operatorID uint, operatorRole models.Role, folderID uint) error

	UploadDocument(ctx context.Context, userID, folderID uint, title string, file *multipart.FileHeader) (*models.Document, error)
	DeleteDocument(ctx context.Context, operatorID uint, operatorRole models.Role, id uint) error

	ListUsers(ctx context.Context) ([]models.User, error)
	ToggleUserActive(ctx context.Context, id uint) (*models.User, error)
	DeleteUser(ctx context.Context, operatorID uint, operatorRole models.Role, targetID uint) error
}

// Handler holds the handlers of all API endpoints.
type Handler struct {
	service PortalService
}

// NewHandler creates a new Handler.
func NewHandler(s PortalService) *Handler {
	return &Handler{service: s}
}

// --- Auth ---

// RegisterRequest is the JSON body of a registration request.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Username   string `json:"username" binding:"required"`
	Department string `json:"department"`
}

// Register handles account registration.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Username, req.Department)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration successful", "user_id": user.ID})
}

// LoginRequest is the JSON body of a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles credential login and returns a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- Search ---

// SearchPage returns the welcome message enumerating the folder hierarchy.
func (h *Handler) SearchPage(c *gin.Context) {
	message, err := h.service.WelcomeMessage(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"welcome_message": message})
}

// SearchQuery answers a natural-language question. The query arrives as the
// form field "query"; the response is {answer, references} or {error}.
func (h *Handler) SearchQuery(c *gin.Context) {
	userID, _ := callerIdentity(c)

	query := c.PostForm("query")
	result, err := h.service.Search(c.Request.Context(), userID, query)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query cannot be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- Folders ---

// CreateFolderRequest is the JSON body of a folder creation request.
type CreateFolderRequest struct {
	CategoryName    string `json:"category_name" binding:"required"`
	SubcategoryName string `json:"subcategory_name" binding:"required"`
}

// CreateFolder gets or creates a category/subcategory pair.
func (h *Handler) CreateFolder(c *gin.Context) {
	userID, _ := callerIdentity(c)

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, subcategory, err := h.service.CreateFolderPair(c.Request.Context(), userID, req.CategoryName, req.SubcategoryName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "folders created",
		"category_id":    category.ID,
		"subcategory_id": subcategory.ID,
	})
}

// AddSubcategoryRequest is the JSON body of a subcategory creation request.
type AddSubcategoryRequest struct {
	ParentID uint   `json:"parent_id" binding:"required"`
	Name     string `json:"subcategory_name" binding:"required"`
}

// AddSubcategory creates a subcategory under an existing category.
func (h *Handler) AddSubcategory(c *gin.Context) {
	userID, _ := callerIdentity(c)

	var req AddSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subcategory, err := h.service.AddSubcategory(c.Request.Context(), userID, req.ParentID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subcategory created", "subcategory_id": subcategory.ID})
}

// DeleteFolder removes a folder with everything under it.
func (h *Handler) DeleteFolder(c *gin.Context) {
	userID, role := callerIdentity(c)

	folderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
		return
	}

	if err := h.service.DeleteFolder(c.Request.Context(), userID, role, folderID); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete categories."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "folder deleted"})
}

// --- Documents ---

// UploadDocument stores an uploaded PDF in the folder named in the route.
func (h *Handler) UploadDocument(c *gin.Context) {
	userID, _ := callerIdentity(c)

	folderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder ID"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	doc, err := h.service.UploadDocument(c.Request.Context(), userID, folderID, title, file)
	if err != nil {
		if errors.Is(err, service.ErrCategoryUpload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document uploaded", "document_id": doc.ID})
}

// DeleteDocument removes a document and its stored file.
func (h *Handler) DeleteDocument(c *gin.Context) {
	userID, role := callerIdentity(c)

	docID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document ID"})
		return
	}

	if err := h.service.DeleteDocument(c.Request.Context(), userID, role, docID); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete documents."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// --- User management ---

// ListUsers returns all accounts.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleUserActive flips a user's active flag.
func (h *Handler) ToggleUserActive(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	user, err := h.service.ToggleUserActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user status updated", "active": user.Active})
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(c *gin.Context) {
	operatorID, role := callerIdentity(c)

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), operatorID, role, targetID); err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
