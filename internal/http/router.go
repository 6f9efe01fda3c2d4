package http

import (
	"net/http"
	"strings"
)

// resourceHandler is served under one /console/{resource} prefix.
type resourceHandler interface {
	View(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
}

// RouterConfig wires the console routes.
type RouterConfig struct {
	Meetings *MeetingHandler
	Users    *UserHandler
	Schedule *ScheduleHandler
	Session  *SessionHandler
	// AdminSession and MeetingSession guard the admin and meeting routes,
	// normally RequireSession for each role.
	AdminSession   func(http.Handler) http.Handler
	MeetingSession func(http.Handler) http.Handler
	// Middleware wraps every route except /healthz, outermost first.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the console handler.
func NewRouter(cfg RouterConfig) http.Handler {
	console := http.NewServeMux()

	if cfg.Meetings != nil {
		mountResource(console, "/console/meetings", cfg.Meetings, cfg.AdminSession)
	}
	if cfg.Users != nil {
		mountResource(console, "/console/users", cfg.Users, cfg.AdminSession)
	}

	if cfg.Schedule != nil {
		console.Handle("/console/schedule", guarded(cfg.MeetingSession, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedule.Get(w, r)
			case http.MethodPut:
				cfg.Schedule.Submit(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})))
	}

	if cfg.Session != nil {
		console.HandleFunc("/console/session", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Session.Create(w, r)
			case http.MethodDelete:
				cfg.Session.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = console
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	root := http.NewServeMux()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	root.Handle("/", handler)
	return root
}

func mountResource(mux *http.ServeMux, prefix string, h resourceHandler, session func(http.Handler) http.Handler) {
	mux.Handle(prefix, guarded(session, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.View(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})))

	mux.Handle(prefix+"/", guarded(session, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix+"/"), "/")
		switch rest {
		case "":
			http.NotFound(w, r)
			return
		case "search":
			onlyMethod(w, r, http.MethodPost, h.Search)
			return
		case "reset":
			onlyMethod(w, r, http.MethodPost, h.Reset)
			return
		case "export":
			onlyMethod(w, r, http.MethodGet, h.Export)
			return
		}

		id, action, _ := strings.Cut(rest, "/")
		r = r.WithContext(ContextWithRecordID(r.Context(), id))
		switch action {
		case "":
			switch r.Method {
			case http.MethodPut:
				h.Update(w, r)
			case http.MethodDelete:
				h.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		case "status":
			onlyMethod(w, r, http.MethodPost, h.Toggle)
		default:
			http.NotFound(w, r)
		}
	})))
}

func guarded(session func(http.Handler) http.Handler, next http.Handler) http.Handler {
	if session == nil {
		return next
	}
	return session(next)
}

func onlyMethod(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		methodNotAllowed(w, method)
		return
	}
	next(w, r)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
