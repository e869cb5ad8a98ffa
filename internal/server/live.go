package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/blockprint/blockprint/pkg/blueprint"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/pipeline"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/preview"
	"github.com/blockprint/blockprint/pkg/render/sink"
	"github.com/blockprint/blockprint/pkg/render/styles"
	"github.com/blockprint/blockprint/pkg/viewport"
)

const liveWriteTimeout = 5 * time.Second

// liveMessage is sent by live preview clients. A message with a size
// resizes the session surface; a message with a blueprint replaces the
// blueprint being previewed. Both trigger a new pass, and so does an empty
// message.
type liveMessage struct {
	Width     *float64        `json:"width,omitempty"`
	Height    *float64        `json:"height,omitempty"`
	Density   *float64        `json:"density,omitempty"`
	Blueprint json.RawMessage `json:"blueprint,omitempty"`
}

// handleLive runs a remote viewport: the client reports its surface size and
// receives a full JSON command pass after every change.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := renderOptions(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.SetRenderDefaults()
	if err := pipeline.ValidateViewport(opts.Width, opts.Height, opts.Density); err != nil {
		s.writeError(w, r, err)
		return
	}
	palette, err := styles.Lookup(opts.Palette)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns()})
	if err != nil {
		s.logger.Warn("websocket accept failed", "id", id, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	send := func(size viewport.Size, cmds []draw.Command) error {
		pass := sink.NewPass(cmds, size.Width, size.Height,
			sink.WithJSONDensity(size.Density), sink.WithJSONPalette(opts.Palette))
		wctx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, pass)
	}

	frame := viewport.NewFrame(opts.Viewport(), send)
	failed := make(chan error, 1)
	adapter, err := viewport.Attach(frame, frame, rec.Blueprint,
		viewport.WithLogger(s.logger),
		viewport.WithRenderOptions(
			preview.WithPalette(palette),
			preview.WithGrid(!opts.HideGrid),
			preview.WithLabel(!opts.HideLabel),
		),
		viewport.WithErrorHandler(func(err error) {
			select {
			case failed <- err:
			default:
			}
		}),
	)
	if err != nil {
		s.logger.Warn("live preview failed", "id", id, "err", err)
		return
	}
	defer adapter.Detach()
	s.logger.Info("live preview started", "id", id, "size", frame.Size())

	for {
		var msg liveMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				s.logger.Info("live preview ended", "id", id, "passes", adapter.Passes())
				return
			}
			s.logger.Warn("live preview read failed", "id", id, "err", err)
			return
		}

		if err := s.applyLive(frame, adapter, msg); err != nil {
			_ = conn.Close(websocket.StatusPolicyViolation, closeReason(err))
			return
		}
		select {
		case err := <-failed:
			s.logger.Warn("live preview write failed", "id", id, "err", err)
			return
		default:
		}
	}
}

func (s *Server) applyLive(frame *viewport.Frame, adapter *viewport.Adapter, msg liveMessage) error {
	hasSize := msg.Width != nil || msg.Height != nil || msg.Density != nil
	if len(msg.Blueprint) == 0 && !hasSize {
		return adapter.Refresh()
	}
	if len(msg.Blueprint) > 0 {
		bp, err := blueprint.Parse(msg.Blueprint)
		if err != nil {
			return err
		}
		if err := bp.Validate(); err != nil {
			return err
		}
		if err := adapter.SetBlueprint(bp); err != nil {
			return err
		}
	}
	if !hasSize {
		return nil
	}

	size := frame.Size()
	if msg.Width != nil {
		size.Width = *msg.Width
	}
	if msg.Height != nil {
		size.Height = *msg.Height
	}
	if msg.Density != nil {
		size.Density = *msg.Density
	}
	if err := pipeline.ValidateViewport(size.Width, size.Height, size.Density); err != nil {
		return err
	}
	frame.Resize(size)
	return nil
}

// originPatterns maps the CORS origins to websocket origin patterns, which
// are matched against the Origin host.
func (s *Server) originPatterns() []string {
	var out []string
	for _, o := range s.origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := parseOriginHost(o); err == nil {
			out = append(out, u)
		}
	}
	return out
}

func parseOriginHost(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("origin has no host")
	}
	return u.Host, nil
}

// maxCloseReason is the close frame payload limit less the status code.
const maxCloseReason = 123

// closeReason fits err into a close frame without splitting a character.
func closeReason(err error) string {
	msg := bperrors.UserMessage(err)
	if len(msg) <= maxCloseReason {
		return msg
	}
	cut := 0
	for i := range msg {
		if i > maxCloseReason {
			break
		}
		cut = i
	}
	return msg[:cut]
}
