package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/models"
)

//go:embed templates/index.html.tmpl
var indexSource string

var indexTemplate = template.Must(template.New("index").
	Funcs(template.FuncMap{
		"renderMoney": renderMoney,
	}).Parse(indexSource))

func renderMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

type pageData struct {
	View         models.ChatView
	Menu         []models.MenuItem
	Confirmation *ConfirmationView
}

// Page renders the chat view: transcript, connectivity indicator, cart
// summary and quick actions, or the order confirmation once an order is
// finalized.
func (h *Handler) Page(c *gin.Context) {
	s := h.session(c)

	data := pageData{
		View: s.View(),
		Menu: s.Menu(),
	}
	if snap, ok := s.Snapshot(); ok {
		view := newConfirmationView(snap)
		data.Confirmation = &view
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(c.Writer, data); err != nil {
		log.Error("Failed to render page: ", err)
	}
}
