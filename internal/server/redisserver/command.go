// Package redisserver provides a Redis protocol compatible server.
package redisserver

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/hivellm/synap/internal/core/domain"
	"github.com/hivellm/synap/internal/engine/kv"
	"github.com/hivellm/synap/internal/engine/pubsub"
	"github.com/hivellm/synap/internal/engine/queue"
	"github.com/hivellm/synap/internal/engine/stream"
	"github.com/hivellm/synap/internal/engine/txn"
	"golang.org/x/time/rate"
)

// Engines bundles every data-plane collaborator the command handler
// dispatches to. A command touches exactly one of these per invocation.
type Engines struct {
	KV     *kv.Store
	Queue  *queue.Manager
	Stream *stream.Manager
	PubSub *pubsub.Router
	Txn    *txn.Coordinator
}

// CommandHandler handles RESP commands against the data-plane engines.
type CommandHandler struct {
	engines     Engines
	logger      *slog.Logger
	limiterMu   sync.Mutex
	limiters    map[string]*rate.Limiter
	ratePerSec  int
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(engines Engines, srv *Server, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	ratePerSec := 0
	if srv != nil && srv.cfg != nil {
		ratePerSec = srv.cfg.RateLimit
	}

	return &CommandHandler{
		engines:    engines,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
		ratePerSec: ratePerSec,
	}
}

// allow checks the per-IP token-bucket rate limit, lazily creating a limiter per IP.
func (h *CommandHandler) allow(ip string) bool {
	if h.ratePerSec <= 0 {
		return true
	}

	h.limiterMu.Lock()
	lim, ok := h.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(h.ratePerSec), h.ratePerSec)
		h.limiters[ip] = lim
	}
	h.limiterMu.Unlock()

	return lim.Allow()
}

// Handle handles a RESP command (array of bulk strings).
func (h *CommandHandler) Handle(conn *Conn, args [][]byte) {
	if len(args) == 0 {
		_ = WriteError(conn.bw, "ERR no command")
		return
	}

	cmdName := normalizeCommandName(args[0])

	switch cmdName {
	case "PING":
		h.handlePing(conn, args)
		return
	case "AUTH":
		h.handleAuth(conn, args)
		return
	case "QUIT":
		h.handleQuit(conn, args)
		return
	}

	if h.ratePerSec > 0 {
		ip := conn.RemoteAddr().String()
		if idx := strings.LastIndex(ip, ":"); idx != -1 {
			ip = ip[:idx]
		}
		if !h.allow(ip) {
			_ = WriteError(conn.bw, "ERR rate limit exceeded")
			return
		}
	}

	switch cmdName {
	// Strings.
	case "GET":
		h.handleGet(conn, args)
	case "SET":
		h.handleSet(conn, args)
	case "DEL":
		h.handleDel(conn, args)
	case "EXPIRE":
		h.handleExpire(conn, args)
	case "TTL":
		h.handleTTL(conn, args)
	case "PERSIST":
		h.handlePersist(conn, args)
	case "EXISTS":
		h.handleExists(conn, args)
	case "INCRBY":
		h.handleIncrBy(conn, args)
	case "MGET":
		h.handleMGet(conn, args)
	case "SCAN":
		h.handleScan(conn, args)

	// Hashes.
	case "HSET":
		h.handleHSet(conn, args)
	case "HGET":
		h.handleHGet(conn, args)
	case "HGETALL":
		h.handleHGetAll(conn, args)
	case "HDEL":
		h.handleHDel(conn, args)
	case "HLEN":
		h.handleHLen(conn, args)

	// Lists.
	case "LPUSH":
		h.handleListPush(conn, args, true)
	case "RPUSH":
		h.handleListPush(conn, args, false)
	case "LPOP":
		h.handleListPop(conn, args, true)
	case "RPOP":
		h.handleListPop(conn, args, false)
	case "LLEN":
		h.handleLLen(conn, args)
	case "LRANGE":
		h.handleLRange(conn, args)

	// Sets.
	case "SADD":
		h.handleSAdd(conn, args)
	case "SREM":
		h.handleSRem(conn, args)
	case "SISMEMBER":
		h.handleSIsMember(conn, args)
	case "SMEMBERS":
		h.handleSMembers(conn, args)
	case "SCARD":
		h.handleSCard(conn, args)

	// Sorted sets.
	case "ZADD":
		h.handleZAdd(conn, args)
	case "ZREM":
		h.handleZRem(conn, args)
	case "ZSCORE":
		h.handleZScore(conn, args)
	case "ZRANGE":
		h.handleZRange(conn, args)

	// Bitmaps and HyperLogLog.
	case "SETBIT":
		h.handleSetBit(conn, args)
	case "GETBIT":
		h.handleGetBit(conn, args)
	case "BITCOUNT":
		h.handleBitCount(conn, args)
	case "PFADD":
		h.handlePFAdd(conn, args)
	case "PFCOUNT":
		h.handlePFCount(conn, args)

	// Geo.
	case "GEOADD":
		h.handleGeoAdd(conn, args)
	case "GEODIST":
		h.handleGeoDist(conn, args)

	// Queues.
	case "QUEUE.PUBLISH":
		h.handleQueuePublish(conn, args)
	case "QUEUE.CONSUME":
		h.handleQueueConsume(conn, args)
	case "QUEUE.ACK":
		h.handleQueueAck(conn, args)
	case "QUEUE.NACK":
		h.handleQueueNack(conn, args)

	// Streams.
	case "STREAM.PUBLISH":
		h.handleStreamPublish(conn, args)
	case "STREAM.CONSUME":
		h.handleStreamConsume(conn, args)

	// Pub/sub.
	case "SUBSCRIBE":
		h.handleSubscribe(conn, args)
	case "UNSUBSCRIBE":
		h.handleUnsubscribe(conn, args)
	case "PUBLISH":
		h.handlePublish(conn, args)

	// Transactions.
	case "WATCH":
		h.handleWatch(conn, args)
	case "UNWATCH":
		h.handleUnwatch(conn, args)
	case "MULTI":
		h.handleMulti(conn, args)
	case "DISCARD":
		h.handleDiscard(conn, args)
	case "EXEC":
		h.handleExec(conn, args)

	default:
		_ = WriteError(conn.bw, "ERR unknown command '"+cmdName+"'")
	}
}

func (h *CommandHandler) handlePing(conn *Conn, args [][]byte) {
	if len(args) > 1 {
		_ = WriteBulk(conn.bw, args[1])
		return
	}
	_ = WriteSimpleString(conn.bw, "PONG")
}

// handleAuth is a placeholder: authentication and permission enforcement
// are an out-of-scope transport concern, so any
// credential is accepted and the connection is marked authenticated.
func (h *CommandHandler) handleAuth(conn *Conn, _ [][]byte) {
	conn.SetState(ConnState{Authenticated: true})
	_ = WriteSimpleString(conn.bw, "OK")
}

func (h *CommandHandler) handleQuit(conn *Conn, _ [][]byte) {
	_ = WriteSimpleString(conn.bw, "OK")
	_ = conn.bw.Flush()
	_ = conn.Close()
}

func wrongArgs(conn *Conn, cmd string) {
	_ = WriteError(conn.bw, "ERR wrong number of arguments for '"+cmd+"' command")
}

func writeKVError(conn *Conn, err error) {
	_ = WriteError(conn.bw, "ERR "+err.Error())
}

// GET <key>
func (h *CommandHandler) handleGet(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "GET")
		return
	}
	v, err := h.engines.KV.Get(string(args[1]))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			_ = WriteNullBulk(conn.bw)
			return
		}
		writeKVError(conn, err)
		return
	}
	_ = WriteBulk(conn.bw, v)
}

// SET <key> <value> [EX seconds]
func (h *CommandHandler) handleSet(conn *Conn, args [][]byte) {
	if len(args) < 3 {
		wrongArgs(conn, "SET")
		return
	}
	var opts kv.SetOptions
	for i := 3; i < len(args); i += 2 {
		if i+1 >= len(args) {
			_ = WriteError(conn.bw, "ERR syntax error")
			return
		}
		if strings.ToUpper(string(args[i])) == "EX" {
			seconds, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil {
				_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
				return
			}
			opts.TTL = seconds * 1e9
		}
	}
	if _, err := h.engines.KV.Set(string(args[1]), args[2], opts); err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// DEL <key> ...
func (h *CommandHandler) handleDel(conn *Conn, args [][]byte) {
	if len(args) < 2 {
		wrongArgs(conn, "DEL")
		return
	}
	keys := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		keys = append(keys, string(a))
	}
	_ = WriteInteger(conn.bw, int64(h.engines.KV.Del(keys...)))
}

// EXPIRE <key> <seconds>
func (h *CommandHandler) handleExpire(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "EXPIRE")
		return
	}
	seconds, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	ok, err := h.engines.KV.Expire(string(args[1]), seconds*1e9)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(ok))
}

// PERSIST <key>
func (h *CommandHandler) handlePersist(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "PERSIST")
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(h.engines.KV.Persist(string(args[1]))))
}

// TTL <key>
func (h *CommandHandler) handleTTL(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "TTL")
		return
	}
	ttl, err := h.engines.KV.TTL(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, ttl/1e9)
}

// EXISTS <key>
func (h *CommandHandler) handleExists(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "EXISTS")
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(h.engines.KV.Exists(string(args[1]))))
}

// INCRBY <key> <delta>
func (h *CommandHandler) handleIncrBy(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "INCRBY")
		return
	}
	delta, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	v, err := h.engines.KV.Incr(string(args[1]), delta)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, v)
}

// MGET <key> ...
func (h *CommandHandler) handleMGet(conn *Conn, args [][]byte) {
	if len(args) < 2 {
		wrongArgs(conn, "MGET")
		return
	}
	keys := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		keys = append(keys, string(a))
	}
	values, err := h.engines.KV.MGet(keys)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(values))
	for _, v := range values {
		_ = WriteBulk(conn.bw, v)
	}
}

// SCAN <shard> <seen>
func (h *CommandHandler) handleScan(conn *Conn, args [][]byte) {
	cursor := kv.Cursor{}
	if len(args) >= 2 {
		shard, _ := strconv.ParseUint(string(args[1]), 10, 32)
		cursor.Shard = uint32(shard)
	}
	if len(args) >= 3 {
		seen, _ := strconv.ParseUint(string(args[2]), 10, 32)
		cursor.Seen = uint32(seen)
	}
	result := h.engines.KV.Scan(cursor)
	_ = WriteArrayHeader(conn.bw, 2)
	_ = WriteBulkString(conn.bw, fmt.Sprintf("%d:%d", result.Cursor.Shard, result.Cursor.Seen))
	_ = WriteArrayHeader(conn.bw, len(result.Keys))
	for _, k := range result.Keys {
		_ = WriteBulkString(conn.bw, k)
	}
}

// HSET <key> <field> <value>
func (h *CommandHandler) handleHSet(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "HSET")
		return
	}
	isNew, err := h.engines.KV.HSet(string(args[1]), string(args[2]), args[3])
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(isNew))
}

// HGET <key> <field>
func (h *CommandHandler) handleHGet(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "HGET")
		return
	}
	v, err := h.engines.KV.HGet(string(args[1]), string(args[2]))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			_ = WriteNullBulk(conn.bw)
			return
		}
		writeKVError(conn, err)
		return
	}
	_ = WriteBulk(conn.bw, v)
}

// HGETALL <key>
func (h *CommandHandler) handleHGetAll(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "HGETALL")
		return
	}
	fields, values, err := h.engines.KV.HGetAll(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(fields)*2)
	for i, f := range fields {
		_ = WriteBulkString(conn.bw, f)
		_ = WriteBulk(conn.bw, values[i])
	}
}

// HDEL <key> <field> ...
func (h *CommandHandler) handleHDel(conn *Conn, args [][]byte) {
	if len(args) < 3 {
		wrongArgs(conn, "HDEL")
		return
	}
	fields := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		fields = append(fields, string(a))
	}
	n, err := h.engines.KV.HDel(string(args[1]), fields...)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// HLEN <key>
func (h *CommandHandler) handleHLen(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "HLEN")
		return
	}
	n, err := h.engines.KV.HLen(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

func (h *CommandHandler) handleListPush(conn *Conn, args [][]byte, left bool) {
	cmd := "RPUSH"
	if left {
		cmd = "LPUSH"
	}
	if len(args) != 3 {
		wrongArgs(conn, cmd)
		return
	}
	var n int
	var err error
	if left {
		n, err = h.engines.KV.LPush(string(args[1]), args[2])
	} else {
		n, err = h.engines.KV.RPush(string(args[1]), args[2])
	}
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

func (h *CommandHandler) handleListPop(conn *Conn, args [][]byte, left bool) {
	cmd := "RPOP"
	if left {
		cmd = "LPOP"
	}
	if len(args) != 2 {
		wrongArgs(conn, cmd)
		return
	}
	var v []byte
	var err error
	if left {
		v, err = h.engines.KV.LPop(string(args[1]))
	} else {
		v, err = h.engines.KV.RPop(string(args[1]))
	}
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			_ = WriteNullBulk(conn.bw)
			return
		}
		writeKVError(conn, err)
		return
	}
	_ = WriteBulk(conn.bw, v)
}

// LLEN <key>
func (h *CommandHandler) handleLLen(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "LLEN")
		return
	}
	n, err := h.engines.KV.LLen(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// LRANGE <key> <start> <stop>
func (h *CommandHandler) handleLRange(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "LRANGE")
		return
	}
	start, err1 := strconv.Atoi(string(args[2]))
	stop, err2 := strconv.Atoi(string(args[3]))
	if err1 != nil || err2 != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	values, err := h.engines.KV.LRange(string(args[1]), start, stop)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(values))
	for _, v := range values {
		_ = WriteBulk(conn.bw, v)
	}
}

// SADD <key> <member> ...
func (h *CommandHandler) handleSAdd(conn *Conn, args [][]byte) {
	if len(args) < 3 {
		wrongArgs(conn, "SADD")
		return
	}
	members := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		members = append(members, string(a))
	}
	n, err := h.engines.KV.SAdd(string(args[1]), members...)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// SREM <key> <member> ...
func (h *CommandHandler) handleSRem(conn *Conn, args [][]byte) {
	if len(args) < 3 {
		wrongArgs(conn, "SREM")
		return
	}
	members := make([]string, 0, len(args)-2)
	for _, a := range args[2:] {
		members = append(members, string(a))
	}
	n, err := h.engines.KV.SRem(string(args[1]), members...)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// SISMEMBER <key> <member>
func (h *CommandHandler) handleSIsMember(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "SISMEMBER")
		return
	}
	ok, err := h.engines.KV.SIsMember(string(args[1]), string(args[2]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(ok))
}

// SMEMBERS <key>
func (h *CommandHandler) handleSMembers(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "SMEMBERS")
		return
	}
	members, err := h.engines.KV.SMembers(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(members))
	for _, m := range members {
		_ = WriteBulkString(conn.bw, m)
	}
}

// SCARD <key>
func (h *CommandHandler) handleSCard(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "SCARD")
		return
	}
	n, err := h.engines.KV.SCard(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// ZADD <key> <score> <member>
func (h *CommandHandler) handleZAdd(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "ZADD")
		return
	}
	score, err := strconv.ParseFloat(string(args[2]), 64)
	if err != nil {
		_ = WriteError(conn.bw, "ERR value is not a valid float")
		return
	}
	isNew, err := h.engines.KV.ZAdd(string(args[1]), string(args[3]), score)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(isNew))
}

// ZREM <key> <member>
func (h *CommandHandler) handleZRem(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "ZREM")
		return
	}
	ok, err := h.engines.KV.ZRem(string(args[1]), string(args[2]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(ok))
}

// ZSCORE <key> <member>
func (h *CommandHandler) handleZScore(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "ZSCORE")
		return
	}
	score, found, err := h.engines.KV.ZScore(string(args[1]), string(args[2]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	if !found {
		_ = WriteNullBulk(conn.bw)
		return
	}
	_ = WriteBulkString(conn.bw, strconv.FormatFloat(score, 'g', -1, 64))
}

// ZRANGE <key> <start> <stop>
func (h *CommandHandler) handleZRange(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "ZRANGE")
		return
	}
	start, err1 := strconv.Atoi(string(args[2]))
	stop, err2 := strconv.Atoi(string(args[3]))
	if err1 != nil || err2 != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	members, scores, err := h.engines.KV.ZRange(string(args[1]), start, stop)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(members)*2)
	for i, m := range members {
		_ = WriteBulkString(conn.bw, m)
		_ = WriteBulkString(conn.bw, strconv.FormatFloat(scores[i], 'g', -1, 64))
	}
}

// SETBIT <key> <offset> <bit>
func (h *CommandHandler) handleSetBit(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "SETBIT")
		return
	}
	offset, err1 := strconv.ParseInt(string(args[2]), 10, 64)
	bit, err2 := strconv.ParseInt(string(args[3]), 10, 8)
	if err1 != nil || err2 != nil || (bit != 0 && bit != 1) {
		_ = WriteError(conn.bw, "ERR bit is not an integer or out of range")
		return
	}
	prev, err := h.engines.KV.SetBit(string(args[1]), offset, byte(bit))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(prev))
}

// GETBIT <key> <offset>
func (h *CommandHandler) handleGetBit(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "GETBIT")
		return
	}
	offset, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	bit, err := h.engines.KV.GetBit(string(args[1]), offset)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(bit))
}

// BITCOUNT <key>
func (h *CommandHandler) handleBitCount(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "BITCOUNT")
		return
	}
	n, err := h.engines.KV.BitCount(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, n)
}

// PFADD <key> <element>
func (h *CommandHandler) handlePFAdd(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "PFADD")
		return
	}
	changed, err := h.engines.KV.PFAdd(string(args[1]), string(args[2]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(changed))
}

// PFCOUNT <key>
func (h *CommandHandler) handlePFCount(conn *Conn, args [][]byte) {
	if len(args) != 2 {
		wrongArgs(conn, "PFCOUNT")
		return
	}
	n, err := h.engines.KV.PFCount(string(args[1]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// GEOADD <key> <member> <lon> <lat>
func (h *CommandHandler) handleGeoAdd(conn *Conn, args [][]byte) {
	if len(args) != 5 {
		wrongArgs(conn, "GEOADD")
		return
	}
	lon, err1 := strconv.ParseFloat(string(args[3]), 64)
	lat, err2 := strconv.ParseFloat(string(args[4]), 64)
	if err1 != nil || err2 != nil {
		_ = WriteError(conn.bw, "ERR value is not a valid float")
		return
	}
	isNew, err := h.engines.KV.GeoAdd(string(args[1]), string(args[2]), lon, lat)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteInteger(conn.bw, boolToInt(isNew))
}

// GEODIST <key> <member1> <member2>
func (h *CommandHandler) handleGeoDist(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "GEODIST")
		return
	}
	meters, found, err := h.engines.KV.GeoDist(string(args[1]), string(args[2]), string(args[3]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	if !found {
		_ = WriteNullBulk(conn.bw)
		return
	}
	_ = WriteBulkString(conn.bw, strconv.FormatFloat(meters, 'f', 4, 64))
}

// QUEUE.PUBLISH <queue> <priority> <payload>
func (h *CommandHandler) handleQueuePublish(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "QUEUE.PUBLISH")
		return
	}
	priority, err := strconv.ParseUint(string(args[2]), 10, 8)
	if err != nil {
		_ = WriteError(conn.bw, "ERR priority is not an integer or out of range")
		return
	}
	id, err := h.engines.Queue.Publish(string(args[1]), args[3], uint8(priority), nil)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteBulkString(conn.bw, id)
}

// QUEUE.CONSUME <queue> <consumer_id>
func (h *CommandHandler) handleQueueConsume(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "QUEUE.CONSUME")
		return
	}
	msg, found, err := h.engines.Queue.Consume(string(args[1]), string(args[2]))
	if err != nil {
		writeKVError(conn, err)
		return
	}
	if !found {
		_ = WriteNullBulk(conn.bw)
		return
	}
	_ = WriteArrayHeader(conn.bw, 3)
	_ = WriteBulkString(conn.bw, msg.ID)
	_ = WriteInteger(conn.bw, int64(msg.Priority))
	_ = WriteBulk(conn.bw, msg.Payload)
}

// QUEUE.ACK <queue> <message_id>
func (h *CommandHandler) handleQueueAck(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "QUEUE.ACK")
		return
	}
	if err := h.engines.Queue.Ack(string(args[1]), string(args[2])); err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// QUEUE.NACK <queue> <message_id> <requeue:0|1>
func (h *CommandHandler) handleQueueNack(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "QUEUE.NACK")
		return
	}
	requeue := string(args[3]) == "1"
	if err := h.engines.Queue.Nack(string(args[1]), string(args[2]), requeue); err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// STREAM.PUBLISH <room> <event_type> <producer_id> <payload>
func (h *CommandHandler) handleStreamPublish(conn *Conn, args [][]byte) {
	if len(args) != 5 {
		wrongArgs(conn, "STREAM.PUBLISH")
		return
	}
	offset := h.engines.Stream.Publish(string(args[1]), string(args[2]), args[4], string(args[3]))
	_ = WriteInteger(conn.bw, int64(offset))
}

// STREAM.CONSUME <room> <from_offset> <limit>
func (h *CommandHandler) handleStreamConsume(conn *Conn, args [][]byte) {
	if len(args) != 4 {
		wrongArgs(conn, "STREAM.CONSUME")
		return
	}
	fromOffset, err1 := strconv.ParseUint(string(args[2]), 10, 64)
	limit, err2 := strconv.Atoi(string(args[3]))
	if err1 != nil || err2 != nil {
		_ = WriteError(conn.bw, "ERR value is not an integer or out of range")
		return
	}
	events, err := h.engines.Stream.Consume(string(args[1]), fromOffset, limit)
	if err != nil {
		writeKVError(conn, err)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(events))
	for _, e := range events {
		_ = WriteArrayHeader(conn.bw, 3)
		_ = WriteInteger(conn.bw, int64(e.Offset))
		_ = WriteBulkString(conn.bw, e.Type)
		_ = WriteBulk(conn.bw, e.Data)
	}
}

// SUBSCRIBE <topic> ...
//
// Messages matching the subscribed patterns are pushed asynchronously on
// conn's write path (see startPubSubPump in server.go); this call only
// registers the patterns and acknowledges them.
func (h *CommandHandler) handleSubscribe(conn *Conn, args [][]byte) {
	if len(args) < 2 {
		wrongArgs(conn, "SUBSCRIBE")
		return
	}
	patterns := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		patterns = append(patterns, string(a))
	}
	ch := h.engines.PubSub.Subscribe(conn.subscriberID(), patterns)
	conn.startPubSubPump(ch)
	for _, p := range patterns {
		_ = WriteArrayHeader(conn.bw, 3)
		_ = WriteBulkString(conn.bw, "subscribe")
		_ = WriteBulkString(conn.bw, p)
		_ = WriteInteger(conn.bw, 1)
	}
}

// UNSUBSCRIBE <topic> ...
func (h *CommandHandler) handleUnsubscribe(conn *Conn, args [][]byte) {
	patterns := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		patterns = append(patterns, string(a))
	}
	h.engines.PubSub.Unsubscribe(conn.subscriberID(), patterns)
	for _, p := range patterns {
		_ = WriteArrayHeader(conn.bw, 3)
		_ = WriteBulkString(conn.bw, "unsubscribe")
		_ = WriteBulkString(conn.bw, p)
		_ = WriteInteger(conn.bw, 0)
	}
}

// PUBLISH <topic> <payload>
func (h *CommandHandler) handlePublish(conn *Conn, args [][]byte) {
	if len(args) != 3 {
		wrongArgs(conn, "PUBLISH")
		return
	}
	n := h.engines.PubSub.Publish(string(args[1]), args[2])
	_ = WriteInteger(conn.bw, int64(n))
}

// WATCH <key> ...
func (h *CommandHandler) handleWatch(conn *Conn, args [][]byte) {
	if len(args) < 2 {
		wrongArgs(conn, "WATCH")
		return
	}
	for _, a := range args[1:] {
		h.engines.Txn.Watch(conn.clientID(), string(a))
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// UNWATCH
func (h *CommandHandler) handleUnwatch(conn *Conn, _ [][]byte) {
	h.engines.Txn.Unwatch(conn.clientID())
	_ = WriteSimpleString(conn.bw, "OK")
}

// MULTI
func (h *CommandHandler) handleMulti(conn *Conn, _ [][]byte) {
	h.engines.Txn.Multi(conn.clientID())
	_ = WriteSimpleString(conn.bw, "OK")
}

// DISCARD
func (h *CommandHandler) handleDiscard(conn *Conn, _ [][]byte) {
	h.engines.Txn.Discard(conn.clientID())
	_ = WriteSimpleString(conn.bw, "OK")
}

// EXEC
func (h *CommandHandler) handleExec(conn *Conn, _ [][]byte) {
	results, aborted, err := h.engines.Txn.Exec(conn.clientID())
	if err != nil {
		writeKVError(conn, err)
		return
	}
	if aborted {
		_ = WriteNullBulk(conn.bw)
		return
	}
	_ = WriteArrayHeader(conn.bw, len(results))
	for _, r := range results {
		if r.Value != nil {
			_ = WriteBulk(conn.bw, r.Value)
		} else {
			_ = WriteInteger(conn.bw, r.Int)
		}
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
