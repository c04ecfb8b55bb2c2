package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/classifier"
)

// ErrPredictionPanic wraps a panic recovered while serving a prediction.
var ErrPredictionPanic = errors.New("prediction panicked")

type predictRequest struct {
	Image string `json:"image"`
}

type predictResponse struct {
	Prediction string `json:"prediction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlePredict handles POST /predict. Every failure becomes a 500 with a JSON error body.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	requestID := newRequestID()
	defer func() {
		if p := recover(); p != nil {
			s.fail(w, requestID, "/predict", fmt.Errorf("%w: %v", ErrPredictionPanic, p))
		}
	}()
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, requestID, "/predict", fmt.Errorf("decode request: %w", err))
		return
	}

	label, err := s.predict(req.Image)
	if err != nil {
		s.fail(w, requestID, "/predict", err)
		return
	}

	s.config.Log.WithField("request_id", requestID).Debugf("Predicted %q", label)
	writeJSON(w, http.StatusOK, predictResponse{Prediction: label})
}

// predict decodes an uploaded image and classifies it with the strict classifier.
func (s *Server) predict(image string) (string, error) {
	if s.config.Classifier == nil {
		return "", classifier.ErrNoModel
	}

	frame, err := DecodeImage(image)
	defer frame.Close()
	if err != nil {
		return "", err
	}

	return s.config.Classifier.Classify(&frame)
}

func (s *Server) fail(w http.ResponseWriter, requestID, endpoint string, err error) {
	s.config.Log.WithField("request_id", requestID).Errorf("Prediction failed: %v", err)
	s.config.Reporter.Report(err, map[string]string{
		"request_id": requestID,
		"endpoint":   endpoint,
	})
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
