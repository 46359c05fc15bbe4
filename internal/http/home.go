package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HomeController struct {
	pages
}

func NewHomeController(p pages) *HomeController {
	return &HomeController{pages: p}
}

// Home renders the landing page.
// GET /
func (hc *HomeController) Home(c *gin.Context) {
	hc.render(c, http.StatusOK, "index", gin.H{"Title": "Book Notes"})
}

// NotFound renders the 404 page for unknown routes.
func (hc *HomeController) NotFound(c *gin.Context) {
	hc.render(c, http.StatusNotFound, "not_found", gin.H{"Title": "Not Found"})
}
