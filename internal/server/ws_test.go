package server

import (
	"errors"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/detector"
)

func TestPredictSocket(t *testing.T) {
	s, reports := newTestServer(t, newClassifier([]detector.HandLandmarks{detector.LetterALandmarks()}, fixedModel{index: 0}))
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	image := jpegBase64(t, 32, 32, color.White)
	messages := []string{
		requestBody(image),
		`not json`,
		requestBody("data:image/jpeg;base64," + image),
	}
	for _, m := range messages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	type reply struct {
		Prediction string `json:"prediction"`
		Error      string `json:"error"`
	}
	var replies []reply
	for range messages {
		var r reply
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("read: %v", err)
		}
		replies = append(replies, r)
	}

	if replies[0].Prediction != "A" || replies[2].Prediction != "A" {
		t.Errorf("unexpected predictions: %+v", replies)
	}
	if replies[1].Error == "" || replies[1].Prediction != "" {
		t.Errorf("expected an error reply for bad JSON, got %+v", replies[1])
	}
	errs, tags := reports.Reports()
	if len(errs) != 1 || tags[0]["endpoint"] != "/ws/predict" {
		t.Errorf("expected one ws report, got %v %v", errs, tags)
	}
}

func TestPredictSocket_RecoversPanic(t *testing.T) {
	s, reports := newTestServer(t, newClassifier([]detector.HandLandmarks{detector.LetterALandmarks()}, panicModel{}))
	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	body := requestBody(jpegBase64(t, 32, 32, color.White))
	for i := 0; i < 2; i++ {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(body)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}

		var r errorResponse
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !strings.Contains(r.Error, "prediction panicked") {
			t.Errorf("reply %d error = %q", i, r.Error)
		}
	}

	errs, tags := reports.Reports()
	if len(errs) != 2 || !errors.Is(errs[0], ErrPredictionPanic) || tags[0]["endpoint"] != "/ws/predict" {
		t.Errorf("reports = %v %v", errs, tags)
	}
}
