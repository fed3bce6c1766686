package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/RBoekdrukker/imc-frontend/internal/events"
	"github.com/RBoekdrukker/imc-frontend/internal/requestctx"
)

// RootRedirect sends / to the home page of the language negotiated from Accept-Language.
func (s *Site) RootRedirect(w http.ResponseWriter, r *http.Request) {
	code := s.def
	if s.bundle != nil {
		code = s.bundle.Resolve(r.Header.Get("Accept-Language"))
	}
	http.Redirect(w, r, "/"+code, http.StatusFound)
}

// SwitchLanguage handles GET /language?to={code}&return={path}. The menu controller rewrites
// the return path to the target language against the published languages; choosing the
// current language, an unknown one or a failed switch lead back to the return path.
func (s *Site) SwitchLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	q := r.URL.Query()

	from := s.def
	back := safeReturn(q.Get("return"))
	if code, ok := s.tables.Aliases.FromPath(back, s.supported); ok {
		from = code
	}
	if back == "" {
		back = "/" + from
	}

	target := s.tables.Aliases.Canonical(q.Get("to"))
	if !s.supported.Contains(target) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	bus := events.NewBus()
	router := &redirectRouter{w: w, r: r, bus: bus, current: back}
	ctrl := s.newController(ctx, router, from)
	if _, err := ctrl.Mount(bus); err != nil {
		logger.Error("mount menu listeners", zap.Error(err))
	}
	defer ctrl.Unmount()

	// the published languages decide which prefix of the return path is a language segment;
	// a failed load leaves the configured set in charge and is logged by the controller
	_ = ctrl.Load(ctx, from)

	if err := ctrl.SelectLanguage(ctx, target); err != nil {
		logger.Warn("language switch failed", zap.String("to", target), zap.String("return", back), zap.Error(err))
	}
	if !router.redirected {
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}
