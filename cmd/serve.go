package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the outreach workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, req *http.Request) {
				session, err := env.Controller.NewSession(req.Context())
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusCreated, session)
			})

			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				sessions, err := env.Controller.Sessions(req.Context())
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, sessions)
			})

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", func(w http.ResponseWriter, req *http.Request) {
					session, err := env.Controller.Session(req.Context(), chi.URLParam(req, "sessionID"))
					if err != nil {
						writeError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, session)
				})

				r.Post("/knowledge-base", func(w http.ResponseWriter, req *http.Request) {
					var body struct {
						CompanyURL  string `json:"company_url"`
						CompanyName string `json:"company_name"`
					}
					if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.CompanyURL == "" {
						writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_url is required"})
						return
					}
					session, err := env.Controller.CreateKnowledgeBase(req.Context(), chi.URLParam(req, "sessionID"), body.CompanyURL, body.CompanyName)
					if err != nil {
						writeError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, session)
				})

				r.Post("/confirm", func(w http.ResponseWriter, req *http.Request) {
					var body struct {
						KnowledgeBase string `json:"knowledge_base"`
					}
					if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
						writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
						return
					}
					session, err := env.Controller.ConfirmKnowledgeBase(req.Context(), chi.URLParam(req, "sessionID"), body.KnowledgeBase)
					if err != nil {
						writeError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, session)
				})

				r.Post("/discover", func(w http.ResponseWriter, req *http.Request) {
					var body struct {
						Prompt string `json:"prompt"`
					}
					if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Prompt == "" {
						writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
						return
					}
					session, err := env.Controller.DiscoverLeads(req.Context(), chi.URLParam(req, "sessionID"), body.Prompt)
					if err != nil {
						writeError(w, err)
						return
					}
					writeJSON(w, http.StatusOK, session)
				})

				r.Route("/companies/{rowID}", func(r chi.Router) {
					r.Put("/notes", func(w http.ResponseWriter, req *http.Request) {
						var body struct {
							Notes string `json:"notes"`
						}
						if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
							writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
							return
						}
						session, err := env.Controller.UpdateNotes(req.Context(), chi.URLParam(req, "sessionID"), chi.URLParam(req, "rowID"), body.Notes)
						if err != nil {
							writeError(w, err)
							return
						}
						writeJSON(w, http.StatusOK, session)
					})

					r.Post("/select", func(w http.ResponseWriter, req *http.Request) {
						session, err := env.Controller.SelectCompany(req.Context(), chi.URLParam(req, "sessionID"), chi.URLParam(req, "rowID"))
						if err != nil {
							writeError(w, err)
							return
						}
						writeJSON(w, http.StatusOK, session)
					})

					// A call blocks for up to the configured call timeout, so
					// the request is accepted and the call runs detached from
					// the request lifecycle. Progress is visible via GET on
					// the session.
					r.Post("/call", func(w http.ResponseWriter, req *http.Request) {
						var body struct {
							Phone string `json:"phone"`
						}
						if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Phone == "" {
							writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone is required"})
							return
						}

						sessionID := chi.URLParam(req, "sessionID")
						rowID := chi.URLParam(req, "rowID")
						go func() {
							if _, err := env.Controller.PlaceCall(ctx, sessionID, rowID, body.Phone); err != nil {
								zap.L().Error("call failed",
									zap.String("session", sessionID),
									zap.String("row", rowID),
									zap.Error(err),
								)
							}
						}()

						writeJSON(w, http.StatusAccepted, map[string]string{
							"status":  "accepted",
							"session": sessionID,
							"row":     rowID,
						})
					})

					r.Post("/schedule", func(w http.ResponseWriter, req *http.Request) {
						session, err := env.Controller.ScheduleMeeting(req.Context(), chi.URLParam(req, "sessionID"), chi.URLParam(req, "rowID"))
						if err != nil {
							writeError(w, err)
							return
						}
						writeJSON(w, http.StatusOK, session)
					})
				})
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, workflow.ErrRowNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workflow.ErrWrongStage):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
