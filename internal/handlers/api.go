package handlers

import (
	"net/http"

	"github.com/RBoekdrukker/imc-frontend/internal/httpx"
	"github.com/RBoekdrukker/imc-frontend/internal/menu"
)

type navigationLink struct {
	ID       int              `json:"id"`
	Title    string           `json:"title"`
	Href     string           `json:"href"`
	External bool             `json:"external"`
	Children []navigationLink `json:"children,omitempty"`
}

type navigationLanguage struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	Flag      string `json:"flag,omitempty"`
	FlagEmoji string `json:"flag_emoji,omitempty"`
	Active    bool   `json:"active"`
}

type navigationResponse struct {
	Language  string               `json:"language"`
	Items     []navigationLink     `json:"items"`
	Languages []navigationLanguage `json:"languages"`
}

// NavigationJSON serves GET /api/navigation?lang={code}: the resolved tree and the language
// list. Unsupported codes fall back to the default language.
func (s *Site) NavigationJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := s.tables.Aliases.Canonical(r.URL.Query().Get("lang"))
	if !s.supported.Contains(code) {
		code = s.def
	}

	ctrl := s.newController(ctx, nil, code)
	if err := ctrl.Load(ctx, code); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("navigation_unavailable", "navigation could not be loaded", http.StatusBadGateway))
		return
	}

	view := ctrl.View("/" + code)
	resp := navigationResponse{
		Language:  code,
		Items:     toNavigationLinks(view.Items),
		Languages: make([]navigationLanguage, 0, len(view.Languages)),
	}
	if resp.Items == nil {
		resp.Items = []navigationLink{}
	}
	for _, o := range view.Languages {
		resp.Languages = append(resp.Languages, navigationLanguage{
			Code:      o.Code,
			Label:     o.Label,
			Flag:      o.FlagSrc,
			FlagEmoji: o.FlagEmoji,
			Active:    o.Active,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toNavigationLinks(links []menu.Link) []navigationLink {
	if len(links) == 0 {
		return nil
	}
	out := make([]navigationLink, 0, len(links))
	for _, l := range links {
		out = append(out, navigationLink{
			ID:       l.ID,
			Title:    l.Title,
			Href:     l.Href,
			External: l.External,
			Children: toNavigationLinks(l.Children),
		})
	}
	return out
}
