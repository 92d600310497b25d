package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	defaultWSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

	wsWriteWait = 10 * time.Second
	// El servidor cierra conexiones mudas: sin pong en este plazo se asume
	// conexión muerta y se reconecta.
	wsPongWait          = 60 * time.Second
	wsPingPeriod        = (wsPongWait * 9) / 10
	wsReconnectDelay    = 2 * time.Second
	wsMaxReconnectDelay = 60 * time.Second
)

// PriceStream recibe actualizaciones de precio en tiempo real del canal
// market del CLOB. Reconecta con backoff exponencial y restaura las
// suscripciones; los updates salen por Updates() hasta que se cierre.
type PriceStream struct {
	wsURL string

	mu     sync.Mutex
	conn   *websocket.Conn
	assets []string
	closed bool

	updates chan domain.PriceUpdate
	done    chan struct{}
}

// NewPriceStream crea un stream para el endpoint dado. wsURL vacío usa el
// endpoint de producción.
func NewPriceStream(wsURL string) *PriceStream {
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &PriceStream{
		wsURL:   wsURL,
		updates: make(chan domain.PriceUpdate, 256),
		done:    make(chan struct{}),
	}
}

// Connect abre la conexión websocket y arranca los loops de lectura y ping.
func (s *PriceStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("polymarket/ws: stream closed")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("polymarket/ws: connect: %w", err)
	}

	s.conn = conn
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	go s.readLoop(ctx, conn)
	go s.pingLoop(conn)

	if len(s.assets) > 0 {
		if err := s.send(conn, wsCommand{Type: "subscribe", AssetIDs: s.assets}); err != nil {
			return fmt.Errorf("polymarket/ws: restore subscriptions: %w", err)
		}
	}
	return nil
}

// Subscribe añade los asset IDs a la suscripción del canal market.
func (s *PriceStream) Subscribe(assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("polymarket/ws: not connected")
	}
	if err := s.send(s.conn, wsCommand{Type: "subscribe", AssetIDs: assetIDs}); err != nil {
		return fmt.Errorf("polymarket/ws: subscribe: %w", err)
	}
	s.assets = append(s.assets, assetIDs...)
	return nil
}

// Updates devuelve el canal de actualizaciones de precio. Se cierra al
// cerrar el stream.
func (s *PriceStream) Updates() <-chan domain.PriceUpdate {
	return s.updates
}

// Close cierra la conexión y el canal de updates.
func (s *PriceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	if s.conn != nil {
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return s.conn.Close()
	}
	return nil
}

// send escribe un comando JSON. El caller sostiene s.mu.
func (s *PriceStream) send(conn *websocket.Conn, cmd wsCommand) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop lee mensajes hasta que la conexión muera; entonces reconecta con
// backoff, salvo que el stream esté cerrado o el contexto cancelado.
func (s *PriceStream) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.reconnect(ctx)
			return
		}
		s.dispatch(message)
	}
}

// pingLoop mantiene viva la conexión.
func (s *PriceStream) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reconnect reintenta Connect con backoff exponencial acotado.
func (s *PriceStream) reconnect(ctx context.Context) {
	delay := wsReconnectDelay
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if err := s.Connect(ctx); err == nil {
			slog.Info("websocket reconnected")
			return
		}

		slog.Warn("websocket reconnect failed, backing off", "delay", delay)
		delay *= 2
		if delay > wsMaxReconnectDelay {
			delay = wsMaxReconnectDelay
		}
	}
}

// dispatch decodifica un mensaje del canal market y emite PriceUpdates.
// Los eventos pueden llegar sueltos o en batch (array JSON).
func (s *PriceStream) dispatch(message []byte) {
	var events []wsEnvelope
	if err := json.Unmarshal(message, &events); err != nil {
		var single wsEnvelope
		if err := json.Unmarshal(message, &single); err != nil {
			slog.Debug("unparseable ws message", "err", err)
			return
		}
		events = []wsEnvelope{single}
	}

	for _, ev := range events {
		update, ok := mapWSEvent(ev)
		if !ok {
			continue
		}
		select {
		case s.updates <- update:
		default:
			// Consumidor lento: se tira el update más viejo no leído
			select {
			case <-s.updates:
			default:
			}
			select {
			case s.updates <- update:
			default:
			}
		}
	}
}

// mapWSEvent convierte un evento del canal market a domain.PriceUpdate.
func mapWSEvent(ev wsEnvelope) (domain.PriceUpdate, bool) {
	if ev.AssetID == "" {
		return domain.PriceUpdate{}, false
	}

	update := domain.PriceUpdate{AssetID: ev.AssetID}

	switch ev.EventType {
	case "book":
		ob := mapOrderBook(ev.AssetID, orderBookResponse{Bids: ev.Bids, Asks: ev.Asks})
		update.BestBid = ob.BestBid()
		update.BestAsk = ob.BestAsk()
	case "price_change", "last_trade_price":
		update.Price = domain.ParsePrice(ev.Price)
		if update.Price <= 0 {
			return domain.PriceUpdate{}, false
		}
	default:
		return domain.PriceUpdate{}, false
	}

	if ms, err := strconv.ParseInt(ev.Timestamp, 10, 64); err == nil && ms > 0 {
		update.Timestamp = time.UnixMilli(ms).UTC()
	} else {
		update.Timestamp = time.Now().UTC()
	}
	return update, true
}
