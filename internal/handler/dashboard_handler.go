package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/model"
	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Home godoc
// GET /
// Reached only when the root redirect is disabled (or the role has no home page).
func (h *DashboardHandler) Home(c *gin.Context) {
	sess := middleware.GetSession(c)
	links := []string{"/browse", "/tutorials", "/library", "/dashboard"}
	if sess.IsAdmin() {
		links = append(links, "/dashboard/admin/books")
	}

	data := gin.H{"page": "home", "links": links}
	if sess != nil {
		data["role"] = sess.Role
	}
	response.Success(c, http.StatusOK, data)
}

// Stats godoc
// GET /dashboard
// Admins get site-wide counts, readers their own reading figures.
func (h *DashboardHandler) Stats(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	stats, err := h.dashboardService.Stats(apiContext(c), sess)
	if err != nil {
		failService(c, err)
		return
	}

	view := "user"
	if sess.Role == model.RoleAdmin {
		view = "admin"
	}
	response.Success(c, http.StatusOK, gin.H{
		"view":  view,
		"stats": stats,
	})
}
