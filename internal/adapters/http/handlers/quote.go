package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/app"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// QuoteHandler serves the displayed quote.
type QuoteHandler struct {
	service *app.MotivationService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.MotivationService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Fetches the next quote and makes it current. Falls back to a local quote
// when the quote API fails, so the only error is 409 for a request that a
// newer one overtook.
//
// @Summary Show a new quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	quote, err := h.service.FetchNewQuote(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteResponse(quote))
}

// GetCurrentQuote handles GET /api/v1/quotes/current
// Returns the displayed quote and whether it is in the collection.
//
// @Summary Get the displayed quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.CurrentQuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/current [get]
func (h *QuoteHandler) GetCurrentQuote(c *gin.Context) {
	quote, ok := h.service.CurrentQuote()
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("current quote", ""))
		return
	}

	c.JSON(http.StatusOK, dto.CurrentQuoteResponse{
		Quote: quoteResponse(quote),
		Liked: h.service.IsCurrentLiked(),
	})
}

func quoteResponse(q domain.Quote) dto.QuoteResponse {
	resp := dto.NewQuoteResponse(q)
	resp.Offline = app.IsFallbackQuote(q.ID)
	return resp
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("/random", h.GetRandomQuote)
	quotes.GET("/current", h.GetCurrentQuote)
}
