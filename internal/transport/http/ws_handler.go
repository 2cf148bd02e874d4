package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/domain"
)

// WSHandler bridges a UI client to the process-wide engine.
type WSHandler struct {
	player   *app.Player
	upgrader websocket.Upgrader
	tick     time.Duration
}

func NewWSHandler(player *app.Player) *WSHandler {
	return &WSHandler{
		player: player,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tick: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type statePayload struct {
	StateID string `json:"stateId"`
}

type answerPayload struct {
	StateID    string             `json:"stateId"`
	QuestionID string             `json:"questionId"`
	Answer     domain.AnswerValue `json:"answer"`
}

type questionIndexPayload struct {
	StateID string `json:"stateId"`
	Index   int    `json:"index"`
}

type profilePayload struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type fontScalingPayload struct {
	Allow bool `json:"allow"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errBadPayload = errors.New("invalid payload")

// ServeWS upgrades HTTP requests to websockets and wires them into the engine operations.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	engine := h.player.Engine()
	select {
	case <-engine.Ready():
	case <-r.Context().Done():
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := engine.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		for {
			var msg outboundMessage[any]
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				msg = outboundMessage[any]{Type: "state", Payload: view}
			case <-ticker.C:
				status := engine.TimerStatus()
				if !status.Active {
					continue
				}
				msg = outboundMessage[any]{Type: "timer", Payload: status}
			case <-closeSignals:
				return
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.handle(r.Context(), inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		if reply != nil {
			send <- *reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle applies one inbound message. State changes reach the client through
// the subscription; only direct answers are returned here.
func (h *WSHandler) handle(ctx context.Context, inbound inboundMessage) (*outboundMessage[any], error) {
	engine := h.player.Engine()
	switch inbound.Type {
	case "answer":
		var p answerPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return nil, err
		}
		res, err := h.player.SubmitAnswer(ctx, p.StateID, p.QuestionID, p.Answer)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "answerResult", Payload: res}, nil
	case "enterState":
		var p statePayload
		if err := decodeState(inbound.Payload, &p); err != nil {
			return nil, err
		}
		region, err := h.player.EnterState(ctx, p.StateID)
		if err != nil {
			return nil, err
		}
		return &outboundMessage[any]{Type: "region", Payload: region}, nil
	case "complete", "clearAnswers", "startTimer", "failState", "setCurrentState":
		var p statePayload
		if err := decodeState(inbound.Payload, &p); err != nil {
			return nil, err
		}
		switch inbound.Type {
		case "complete":
			engine.CompleteState(p.StateID)
		case "clearAnswers":
			engine.ClearStateAnswers(p.StateID)
		case "startTimer":
			engine.StartStateTimer(p.StateID)
		case "failState":
			engine.FailState(p.StateID)
		case "setCurrentState":
			engine.SetCurrentState(p.StateID)
		}
	case "setQuestionIndex":
		var p questionIndexPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return nil, err
		}
		if p.StateID == "" {
			return nil, errBadPayload
		}
		engine.SetQuestionIndexForState(p.StateID, p.Index)
	case "setProfile":
		var p profilePayload
		if err := decode(inbound.Payload, &p); err != nil {
			return nil, err
		}
		profile, err := domain.PlayerProfile{Name: p.Name, Age: p.Age}.Validate()
		if err != nil {
			return nil, err
		}
		engine.SetPlayerProfile(profile.Name, profile.Age)
	case "fontScaling":
		var p fontScalingPayload
		if err := decode(inbound.Payload, &p); err != nil {
			return nil, err
		}
		engine.SetAllowFontScaling(p.Allow)
	case "pauseTimer":
		engine.PauseStateTimer()
	case "resumeTimer":
		engine.ResumeStateTimer()
	case "clearTimer":
		engine.ClearStateTimer()
	case "tutorialSeen":
		engine.MarkTutorialSeen()
	case "dismissSuccess":
		engine.DismissSuccessModal()
	case "dismissGagal":
		engine.DismissGagalModal()
	case "reset":
		engine.ResetGame(ctx)
	default:
		return nil, errors.New("unsupported message type")
	}
	return nil, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}

func decodeState(raw json.RawMessage, p *statePayload) error {
	if err := decode(raw, p); err != nil {
		return err
	}
	if p.StateID == "" {
		return errBadPayload
	}
	return nil
}
