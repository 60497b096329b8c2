package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/azure/brand-pulse/internal/explorer"
	"github.com/azure/brand-pulse/internal/export"
	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const defaultRecentAnalyses = 5

func newRouter(svc *explorer.Service, kv storage.StorageInterface, defaultRecipient string) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler(svc, kv)).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(svc)).Methods("GET")

	router.HandleFunc("/search", searchHandler(svc)).Methods("POST")
	router.HandleFunc("/history", historyHandler(svc)).Methods("GET")
	router.HandleFunc("/history", clearHistoryHandler(svc)).Methods("DELETE")

	router.HandleFunc("/analyses", analyzeHandler(svc)).Methods("POST")
	router.HandleFunc("/analyses", recentAnalysesHandler(svc)).Methods("GET")
	router.HandleFunc("/analyses/{brand}", selectAnalysisHandler(svc)).Methods("GET")
	router.HandleFunc("/analyses/{brand}", removeAnalysisHandler(svc)).Methods("DELETE")

	router.HandleFunc("/notifications", listNotificationsHandler(svc)).Methods("GET")
	router.HandleFunc("/notifications", clearNotificationsHandler(svc)).Methods("DELETE")
	router.HandleFunc("/notifications/{id}", dismissNotificationHandler(svc)).Methods("DELETE")

	router.HandleFunc("/export", exportHandler(svc)).Methods("GET")
	router.HandleFunc("/export/email", emailExportHandler(svc, defaultRecipient)).Methods("POST")

	return router
}

// healthCheckHandler reports the cached backend reachability and checks
// that the durability layer can be read.
func healthCheckHandler(svc *explorer.Service, kv storage.StorageInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		storageStatus := "ok"

		keys, err := kv.List("")
		if err != nil {
			logrus.Errorf("Storage health check failed: %v", err)
			status, code = "unhealthy", http.StatusServiceUnavailable
			storageStatus = "unavailable"
		}

		writeJSON(w, code, map[string]any{
			"status":      status,
			"backend":     svc.Online(),
			"storage":     storageStatus,
			"stored_keys": len(keys),
			"timestamp":   time.Now().Format(time.RFC3339),
		})
	}
}

func metricsHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(svc.GetMetrics()))
	}
}

func searchHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := models.SearchQuery{MaxResults: models.DefaultMaxResults}
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}

		result, err := svc.Search(r.Context(), query)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func historyHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"history": svc.History()})
	}
}

func clearHistoryHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearHistory(); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func analyzeHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BrandName string `json:"brandName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}

		report, err := svc.AnalyzeBrand(r.Context(), body.BrandName)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func recentAnalysesHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := defaultRecentAnalyses
		if raw := r.URL.Query().Get("recent"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("recent must be a non-negative integer"))
				return
			}
			n = parsed
		}
		writeJSON(w, http.StatusOK, map[string][]string{"brands": svc.RecentAnalyses(n)})
	}
}

func selectAnalysisHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brand := mux.Vars(r)["brand"]
		current, ok := svc.SelectAnalysis(brand)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("no saved analysis for %q", brand))
			return
		}
		writeJSON(w, http.StatusOK, current)
	}
}

func removeAnalysisHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveAnalysis(mux.Vars(r)["brand"]); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listNotificationsHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]models.Notification{
			"notifications": svc.Notifications().List(),
		})
	}
}

func dismissNotificationHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// dismissing an expired id is not an error
		svc.Notifications().Dismiss(mux.Vars(r)["id"])
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearNotificationsHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Notifications().ClearAll()
		w.WriteHeader(http.StatusNoContent)
	}
}

func exportHandler(svc *explorer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, err := svc.Export()
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func emailExportHandler(svc *explorer.Service, defaultRecipient string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			To string `json:"to"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
				return
			}
		}
		if body.To == "" {
			body.To = defaultRecipient
		}

		if err := svc.EmailExport(body.To); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Export sent to " + body.To})
	}
}

func statusFor(err error) int {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var svcErr *models.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case models.KindRateLimited:
			return http.StatusTooManyRequests
		case models.KindTimeout:
			return http.StatusGatewayTimeout
		case models.KindClient:
			return http.StatusBadRequest
		case models.KindCanceled:
			return http.StatusRequestTimeout
		default:
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": models.UserMessage(err)})
}
