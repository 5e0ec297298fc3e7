package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait は1フレームの書き込み許容時間。
	writeWait = 10 * time.Second
	// pongWait はpong応答の待機時間。超過した接続は死んだとみなす。
	pongWait = 60 * time.Second
	// pingPeriod はping送信間隔。pongWaitより短くなければならない。
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize は受信フレームの上限バイト数。
	maxFrameSize = 4096
	// sendBufferSize は送信チャネルのバッファ数。
	sendBufferSize = 64
)

// ErrClientClosed は閉じた接続への送信を表す。
var ErrClientClosed = errors.New("client connection closed")

// ClientがPeerを満たすことはコンパイル時チェックで保証する
var _ Peer = (*Client)(nil)

// Client は認証済みのwebsocket接続を表す。
// 書き込みはwritePumpの単一goroutineに集約し、他からはSendを使う。
type Client struct {
	conn      *websocket.Conn
	userID    int64
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient はClientを生成する。userIDはセッションで認証済みであること。
func NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

// UserID は接続の認証済みユーザーIDを返す。
func (c *Client) UserID() int64 {
	return c.userID
}

// Send はフレームを送信キューへ積む。バッファが満杯の場合は
// 受信の遅い接続とみなして切断する。
func (c *Client) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrClientClosed
	case c.send <- data:
		return nil
	default:
		c.Close()
		return ErrClientClosed
	}
}

// Close は接続を閉じる。何度呼んでも安全。
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// WritePump は送信キューのフレームを接続へ書き込み、定期的にpingを打つ。
// 接続ごとに1つのgoroutineで動かす。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadPump は受信フレームを読み、Relayに渡す。接続が切れるまでブロックする。
// 終了時に全ルームから購読解除する。
func (c *Client) ReadPump(ctx context.Context, relay *Relay) {
	defer func() {
		relay.hub.UnsubscribeAll(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error",
					slog.Int64("user_id", c.userID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var frame Inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			relay.dropFrame(c.userID, DropReasonMalformed)
			continue
		}
		relay.Handle(ctx, c, frame)
	}
}
