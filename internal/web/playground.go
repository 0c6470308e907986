package web

import (
	"net/http"

	"github.com/erazemk/garderoba/internal/canvas"
)

// PlaygroundPage handles GET /playground. The board itself lives behind the
// canvas API; the page only picks the source. Visitors get the demo board,
// signed-in users may lay out their own closet.
func (s *Server) PlaygroundPage(w http.ResponseWriter, r *http.Request) {
	source := "demo"
	if GetWebClaims(r.Context()) != nil && r.URL.Query().Get("source") == "closet" {
		source = "closet"
	}

	s.Templates.Render(w, "playground.html", &struct {
		PageData
		Source     string
		Breakpoint int
	}{
		PageData:   s.page(r, "Playground"),
		Source:     source,
		Breakpoint: canvas.Breakpoint,
	})
}
