// Package web exposes the HTTP surface: the public site, the JSON content
// API, the admin access page, and the dashboard.
package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/saltware/website/internal/auth"
	"github.com/saltware/website/internal/content"
	"github.com/saltware/website/internal/dashboard"
)

type Server struct {
	log  *zap.Logger
	gate *auth.Gate
	ctrl *dashboard.Controller
	tmpl *template.Template

	services   *content.Client[content.Service]
	employees  *content.Client[content.Employee]
	projects   *content.Client[content.Project]
	industries *content.Client[content.Industry]
	stats      *content.Client[content.Stat]
}

func New(log *zap.Logger, gate *auth.Gate, ctrl *dashboard.Controller, backend content.Backend) *Server {
	return &Server{
		log:        log,
		gate:       gate,
		ctrl:       ctrl,
		tmpl:       parseTemplates(),
		services:   content.NewClient(backend, content.Services),
		employees:  content.NewClient(backend, content.Employees),
		projects:   content.NewClient(backend, content.Projects),
		industries: content.NewClient(backend, content.Industries),
		stats:      content.NewClient(backend, content.Stats),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public site
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/content", s.handleContent)

	// Admin access (public; not linked from the site)
	mux.HandleFunc("GET /admin/access", s.handleAccess)
	mux.HandleFunc("POST /admin/access", s.handleAccess)
	mux.HandleFunc("POST /logout", s.handleLogout)

	// Dashboard, admins only
	mux.HandleFunc("GET /admin", s.admin(s.handleDashboard))
	mux.HandleFunc("POST /admin/{tab}/new", s.admin(s.handleNew))
	mux.HandleFunc("POST /admin/{tab}/{id}/edit", s.admin(s.handleEdit))
	mux.HandleFunc("POST /admin/{tab}/save", s.admin(s.handleSave))
	mux.HandleFunc("POST /admin/{tab}/cancel", s.admin(s.handleCancel))
	mux.HandleFunc("POST /admin/{tab}/{id}/delete", s.admin(s.handleDelete))

	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type ctxKey int

const sessionKey ctxKey = 0

func withSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func requestSession(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(sessionKey).(auth.Session)
	return sess
}

// admin resolves the session cookie and admits administrators only. The check
// runs on every request and the resolved session is bound to the request
// context, never to shared state, so concurrent requests cannot observe each
// other's admission. Admitted requests carry the actor token for the store's
// own policy check.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, state := s.gate.Check(r.Context(), sessionToken(r))
		if state != auth.StateAdmin {
			http.Redirect(w, r, "/admin/access", http.StatusSeeOther)
			return
		}
		ctx := withSession(r.Context(), sess)
		next(w, r.WithContext(content.WithActor(ctx, sess.Token)))
	}
}

// Public site

type contentView struct {
	Services   []content.Service  `json:"services"`
	Employees  []content.Employee `json:"employees"`
	Projects   []content.Project  `json:"projects"`
	Industries []content.Industry `json:"industries"`
	Stats      []content.Stat     `json:"stats"`
}

func (s *Server) snapshot(ctx context.Context) (contentView, error) {
	var view contentView
	var err error
	if view.Services, err = s.services.List(ctx); err != nil {
		return view, err
	}
	if view.Employees, err = s.employees.List(ctx); err != nil {
		return view, err
	}
	if view.Projects, err = s.projects.List(ctx); err != nil {
		return view, err
	}
	if view.Industries, err = s.industries.List(ctx); err != nil {
		return view, err
	}
	if view.Stats, err = s.stats.List(ctx); err != nil {
		return view, err
	}
	return view, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, err := s.snapshot(r.Context())
	if err != nil {
		s.log.Error("content snapshot failed", zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", view)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	view, err := s.snapshot(r.Context())
	if err != nil {
		s.log.Error("content snapshot failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Access

type accessView struct {
	Error string
	Name  string
	Email string
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, state := s.gate.Check(r.Context(), sessionToken(r)); state == auth.StateAdmin {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		s.render(w, "access.html", accessView{})
		return
	}

	creds := auth.Credentials{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
	}
	sess, err := s.gate.Access(r.Context(), creds)
	if err != nil {
		s.render(w, "access.html", accessView{Error: err.Error(), Name: creds.Name, Email: creds.Email})
		return
	}
	setSessionCookie(w, sess.Token)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Revoke(r.Context(), sessionToken(r))
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dashboard

type tabView struct {
	Name   string
	Label  string
	Active bool
}

type dashboardView struct {
	Email   string
	Tabs    []tabView
	Tab     string
	Items   []dashboard.ListItem
	Editing bool
	IsNew   bool
	Form    []dashboard.FormField
	Error   string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	kind := content.Kind(r.URL.Query().Get("tab"))
	if kind == "" {
		kind = s.ctrl.ActiveTab()
	}
	p, err := s.ctrl.SelectTab(r.Context(), kind)
	if err != nil && p == nil {
		http.NotFound(w, r)
		return
	}
	errMsg := ""
	if err != nil {
		// Load failed: the stale list (possibly empty) is still shown.
		errMsg = err.Error()
	}
	s.renderDashboard(w, r, p, errMsg)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, p dashboard.Panel, errMsg string) {
	view := dashboardView{
		Email:   requestSession(r.Context()).Email,
		Tab:     string(p.Kind()),
		Items:   p.Items(),
		Editing: p.Editing(),
		IsNew:   p.IsNew(),
		Form:    p.Form(),
		Error:   errMsg,
	}
	for _, t := range s.ctrl.Tabs() {
		view.Tabs = append(view.Tabs, tabView{
			Name:   string(t),
			Label:  titleCase(string(t)),
			Active: t == p.Kind(),
		})
	}
	s.render(w, "admin.html", view)
}

// tabPanel resolves the {tab} path segment for the edit operations.
func (s *Server) tabPanel(w http.ResponseWriter, r *http.Request) (dashboard.Panel, bool) {
	kind := content.Kind(r.PathValue("tab"))
	p, err := s.ctrl.Panel(kind)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	return p, true
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tabPanel(w, r)
	if !ok {
		return
	}
	// Refresh first so the draft's rank default counts current rows, not
	// whatever the last render happened to load.
	if err := p.Reload(r.Context()); err != nil {
		s.log.Warn("list reload failed", zap.String("collection", string(p.Kind())), zap.Error(err))
	}
	p.BeginCreate()
	http.Redirect(w, r, "/admin?tab="+string(p.Kind()), http.StatusSeeOther)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tabPanel(w, r)
	if !ok {
		return
	}
	if err := p.BeginEdit(r.PathValue("id")); err != nil {
		s.renderDashboard(w, r, p, err.Error())
		return
	}
	http.Redirect(w, r, "/admin?tab="+string(p.Kind()), http.StatusSeeOther)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tabPanel(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	for name := range r.PostForm {
		p.SetField(name, r.PostForm.Get(name))
	}
	if err := p.Commit(r.Context()); err != nil {
		s.log.Warn("commit failed", zap.String("collection", string(p.Kind())), zap.Error(err))
		s.renderDashboard(w, r, p, err.Error())
		return
	}
	http.Redirect(w, r, "/admin?tab="+string(p.Kind()), http.StatusSeeOther)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tabPanel(w, r)
	if !ok {
		return
	}
	p.Cancel()
	http.Redirect(w, r, "/admin?tab="+string(p.Kind()), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := s.tabPanel(w, r)
	if !ok {
		return
	}
	if err := p.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.log.Warn("delete failed", zap.String("collection", string(p.Kind())), zap.Error(err))
		s.renderDashboard(w, r, p, err.Error())
		return
	}
	http.Redirect(w, r, "/admin?tab="+string(p.Kind()), http.StatusSeeOther)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
