package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/app"
)

// CollectionHandler serves the liked quotes and the storage they live in.
type CollectionHandler struct {
	service *app.MotivationService
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(service *app.MotivationService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// GetCollection handles GET /api/v1/collection
//
// @Summary List liked quotes, most recent first
// @Tags collection
// @Produce json
// @Success 200 {object} dto.CollectionResponse
// @Router /api/v1/collection [get]
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCollectionResponse(
		string(h.service.StorageKind()),
		h.service.GetCollection(),
	))
}

// ToggleLike handles POST /api/v1/collection/toggle
// Adds the quote when absent and removes it when present. A failed save is
// reported on the notification feed, not here.
//
// @Summary Like or unlike a quote
// @Tags collection
// @Accept json
// @Produce json
// @Param quote body dto.ToggleLikeRequest true "Quote"
// @Success 200 {object} dto.ToggleLikeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/collection/toggle [post]
func (h *CollectionHandler) ToggleLike(c *gin.Context) {
	var req dto.ToggleLikeRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), req.Quote())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleLikeResponse{
		Liked: liked,
		Count: len(h.service.GetCollection()),
	})
}

// RemoveQuote handles DELETE /api/v1/collection/:id
// Removing an id that is not in the collection still succeeds.
//
// @Summary Remove a liked quote
// @Tags collection
// @Param id path string true "Quote ID"
// @Success 204
// @Router /api/v1/collection/{id} [delete]
func (h *CollectionHandler) RemoveQuote(c *gin.Context) {
	if err := h.service.RemoveFromCollection(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearCollection handles DELETE /api/v1/collection
//
// @Summary Remove every liked quote
// @Tags collection
// @Success 204
// @Router /api/v1/collection [delete]
func (h *CollectionHandler) ClearCollection(c *gin.Context) {
	if err := h.service.ClearCollection(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RenegotiateStorage handles POST /api/v1/storage/renegotiate
//
// @Summary Check the stores again and move the collection if the backend changed
// @Tags storage
// @Produce json
// @Success 200 {object} dto.StorageResponse
// @Router /api/v1/storage/renegotiate [post]
func (h *CollectionHandler) RenegotiateStorage(c *gin.Context) {
	kind := h.service.RenegotiateStorage(c.Request.Context())

	c.JSON(http.StatusOK, dto.StorageResponse{Storage: string(kind)})
}

// RegisterCollectionRoutes registers collection and storage routes.
func (h *CollectionHandler) RegisterCollectionRoutes(rg *gin.RouterGroup) {
	collection := rg.Group("/collection")
	collection.GET("", h.GetCollection)
	collection.POST("/toggle", h.ToggleLike)
	collection.DELETE("", h.ClearCollection)
	collection.DELETE("/:id", h.RemoveQuote)

	rg.POST("/storage/renegotiate", h.RenegotiateStorage)
}
