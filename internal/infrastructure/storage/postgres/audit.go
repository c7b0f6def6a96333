package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"linksoc/internal/domain/audit"
)

// CompressionAlgo specifies the compression applied to stored changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the changes size above which payloads are zstd compressed.
const DefaultCompressThreshold = 4 * 1024

var _ audit.Recorder = (*AuditRecorder)(nil)

// AuditRecorder writes audit entries to sys_audit within the caller's transaction.
type AuditRecorder struct {
	txManager *TxManager
	codec     *changesCodec
}

// NewAuditRecorder creates a new audit recorder.
func NewAuditRecorder(txManager *TxManager, compressThreshold int) (*AuditRecorder, error) {
	codec, err := newChangesCodec(compressThreshold)
	if err != nil {
		return nil, err
	}
	return &AuditRecorder{txManager: txManager, codec: codec}, nil
}

// Record implements audit.Recorder.
func (r *AuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	audit.Prepare(&entry)

	plain, compressed, algo, err := r.codec.encode(entry.Changes)
	if err != nil {
		return err
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_key, action, operator,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entry.ID, entry.Entity, entry.EntityKey, string(entry.Action), entry.Operator,
		plain, compressed, string(algo), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first, with changes decompressed.
func (r *AuditRecorder) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_key, action, operator,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			plain      []byte
			compressed []byte
			algo       string
		)
		if err := rows.Scan(
			&e.ID, &e.Entity, &e.EntityKey, &action, &e.Operator,
			&plain, &compressed, &algo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)

		if e.Changes, err = r.codec.decode(plain, compressed, CompressionAlgo(algo)); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// changesCodec serializes audit changes, compressing large payloads.
type changesCodec struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func newChangesCodec(threshold int) (*changesCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return &changesCodec{encoder: encoder, decoder: decoder, threshold: threshold}, nil
}

func (c *changesCodec) encode(changes map[string]any) (plain, compressed []byte, algo CompressionAlgo, err error) {
	if changes == nil {
		return nil, nil, CompressionNone, nil
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) <= c.threshold {
		return raw, nil, CompressionNone, nil
	}
	return nil, c.encoder.EncodeAll(raw, nil), CompressionZstd, nil
}

func (c *changesCodec) decode(plain, compressed []byte, algo CompressionAlgo) (map[string]any, error) {
	raw := plain
	if algo == CompressionZstd && len(compressed) > 0 {
		var err error
		if raw, err = c.decoder.DecodeAll(compressed, nil); err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var changes map[string]any
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	return changes, nil
}
