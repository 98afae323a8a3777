package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"usmle-quiz-service/internal/app"
	"usmle-quiz-service/internal/domain"
)

// WSHandler exposes quiz play over a websocket: the client starts an attempt,
// answers questions, and receives timer ticks, feedback, and the final
// summary as discrete events.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode      domain.QuizMode         `json:"mode"`
	Overrides *domain.ConfigOverrides `json:"overrides,omitempty"`
}

type answerPayload struct {
	OptionID string `json:"optionId"`
}

type startedPayload struct {
	AttemptID string            `json:"attemptId"`
	Config    domain.QuizConfig `json:"config"`
	Persisted bool              `json:"persisted"`
}

type questionPayload struct {
	Index           int             `json:"index"`
	Total           int             `json:"total"`
	QuestionID      string          `json:"questionId"`
	Text            string          `json:"text"`
	Options         []domain.Option `json:"options"`
	QuestionSeconds int             `json:"questionSeconds,omitempty"`
	SessionSeconds  int             `json:"sessionSeconds,omitempty"`
}

type answerResultPayload struct {
	QuestionID      string `json:"questionId"`
	Correct         bool   `json:"correct"`
	TimedOut        bool   `json:"timedOut"`
	CorrectOptionID string `json:"correctOptionId,omitempty"`
	Explanation     string `json:"explanation,omitempty"`
}

type tickPayload struct {
	Scope     string `json:"scope"` // "question" or "session"
	Remaining int    `json:"remaining"`
}

type completedPayload struct {
	Summary   domain.ResultSummary `json:"summary"`
	Persisted bool                 `json:"persisted"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one quiz attempt per
// connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var attempt *app.Attempt
	var ticker *time.Ticker
	var pumpDone chan struct{}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			if attempt != nil {
				send <- errMsg("attempt already started")
				continue
			}
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid start payload")
				continue
			}
			attempt, err = h.service.Start(r.Context(), userID, payload.Mode, payload.Overrides)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			defer h.service.Release(attempt.ID())

			cfg := attempt.Session().Config()
			if cfg.TimePerQuestion > 0 || cfg.TotalTimeLimit > 0 {
				ticker = time.NewTicker(time.Second)
				defer ticker.Stop()
				// closeSignals also releases Run: a stopped ticker never
				// closes its channel.
				go attempt.Timer().Run(ticker.C, closeSignals)
				pumpDone = make(chan struct{})
				go func() {
					defer close(pumpDone)
					h.pumpTimerEvents(attempt, send, closeSignals)
				}()
			}

			send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
				AttemptID: attempt.ID(),
				Config:    cfg,
				Persisted: attempt.Persisted(),
			}}
			h.sendCurrentQuestion(attempt, send)

		case "answer":
			if attempt == nil {
				send <- errMsg("no active attempt")
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			rec, ok, err := attempt.SelectOption(payload.OptionID)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			if !ok {
				// Already answered or completed; double submissions are ignored.
				continue
			}
			h.sendAnswerResult(attempt, rec, send)
			if attempt.Session().Config().AutoAdvance {
				h.advance(attempt, send)
			}

		case "next":
			if attempt == nil {
				send <- errMsg("no active attempt")
				continue
			}
			h.advance(attempt, send)

		case "reset":
			if attempt == nil {
				send <- errMsg("no active attempt")
				continue
			}
			attempt.Reset()
			h.sendCurrentQuestion(attempt, send)

		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	if pumpDone != nil {
		// The pump must drain out before send closes, or a mid-cascade
		// trySend could pick the closed send case.
		<-pumpDone
	}
	close(send)
	<-writerDone
}

// pumpTimerEvents forwards countdown events to the client and applies
// expirations to the attempt.
func (h *WSHandler) pumpTimerEvents(attempt *app.Attempt, send chan outboundMessage[any], closeSignals chan struct{}) {
	events := attempt.Timer().Events()
	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case app.TimerQuestionTick:
				h.trySend(send, outboundMessage[any]{Type: "tick", Payload: tickPayload{Scope: "question", Remaining: ev.Remaining}}, closeSignals)
			case app.TimerSessionTick:
				h.trySend(send, outboundMessage[any]{Type: "tick", Payload: tickPayload{Scope: "session", Remaining: ev.Remaining}}, closeSignals)
			case app.TimerQuestionExpired:
				rec, ok := attempt.HandleTimeout()
				if !ok {
					continue
				}
				h.trySend(send, answerResultMessage(attempt, rec), closeSignals)
				if attempt.Session().Config().AutoAdvance {
					h.advanceWith(attempt, func(msg outboundMessage[any]) {
						h.trySend(send, msg, closeSignals)
					})
				}
			case app.TimerSessionExpired:
				attempt.ForceComplete()
				h.trySend(send, completedMessage(attempt), closeSignals)
			}
		case <-closeSignals:
			return
		}
	}
}

func (h *WSHandler) trySend(send chan outboundMessage[any], msg outboundMessage[any], closeSignals chan struct{}) {
	select {
	case send <- msg:
	case <-closeSignals:
	}
}

func (h *WSHandler) advance(attempt *app.Attempt, send chan outboundMessage[any]) {
	h.advanceWith(attempt, func(msg outboundMessage[any]) {
		send <- msg
	})
}

func (h *WSHandler) advanceWith(attempt *app.Attempt, emit func(outboundMessage[any])) {
	completed, ok := attempt.Advance()
	if !ok {
		return
	}
	if completed {
		emit(completedMessage(attempt))
		return
	}
	if msg, ok := currentQuestionMessage(attempt); ok {
		emit(msg)
	}
}

func (h *WSHandler) sendCurrentQuestion(attempt *app.Attempt, send chan outboundMessage[any]) {
	if msg, ok := currentQuestionMessage(attempt); ok {
		send <- msg
	}
}

func (h *WSHandler) sendAnswerResult(attempt *app.Attempt, rec domain.AnswerRecord, send chan outboundMessage[any]) {
	send <- answerResultMessage(attempt, rec)
}

func currentQuestionMessage(attempt *app.Attempt) (outboundMessage[any], bool) {
	question, index, ok := attempt.Session().CurrentQuestion()
	if !ok {
		return outboundMessage[any]{}, false
	}
	cfg := attempt.Session().Config()
	payload := questionPayload{
		Index:      index,
		Total:      len(attempt.Session().Questions()),
		QuestionID: question.ID,
		Text:       question.Text,
		Options:    question.Options,
	}
	if cfg.TimePerQuestion > 0 {
		payload.QuestionSeconds = attempt.Timer().QuestionRemaining()
	}
	if cfg.TotalTimeLimit > 0 {
		payload.SessionSeconds = attempt.Timer().SessionRemaining()
	}
	return outboundMessage[any]{Type: "question", Payload: payload}, true
}

func answerResultMessage(attempt *app.Attempt, rec domain.AnswerRecord) outboundMessage[any] {
	payload := answerResultPayload{
		QuestionID: rec.QuestionID,
		Correct:    rec.Correct,
		TimedOut:   rec.TimedOut,
	}
	if attempt.Session().Config().ShowExplanations {
		for _, q := range attempt.Session().Questions() {
			if q.ID == rec.QuestionID {
				payload.CorrectOptionID = q.CorrectOptionID
				payload.Explanation = q.Explanation
				break
			}
		}
	}
	return outboundMessage[any]{Type: "answerResult", Payload: payload}
}

func completedMessage(attempt *app.Attempt) outboundMessage[any] {
	return outboundMessage[any]{Type: "completed", Payload: completedPayload{
		Summary:   attempt.Summary(),
		Persisted: attempt.Persisted(),
	}}
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
