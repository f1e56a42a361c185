package site

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/catalogsite/pkg/event"
)

// auditTimeLayout はcreated_at列の保存形式。固定幅にして文字列順と時刻順を一致させる。
const auditTimeLayout = "2006-01-02T15:04:05.000000000Z"

// defaultMaxAuditEvents はauth_eventsテーブルに保持するイベントの既定の上限件数。
const defaultMaxAuditEvents = 10000

// auditStore は監査イベントをauth_eventsテーブルに保存する。
type auditStore struct {
	db *sql.DB
	// maxEvents は保持する件数の上限。超えた分は古い順に削除する。0以下なら無制限。
	maxEvents int
}

// Record はイベントを1件保存し、上限を超えた古いイベントを削除する。
func (a *auditStore) Record(ctx context.Context, e *event.Event) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, type, subject, remote_addr, request_id, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Subject, e.RemoteAddr, e.RequestID, string(e.Data),
		e.CreatedAt.UTC().Format(auditTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("監査イベントの保存に失敗: %w", err)
	}
	return a.prune(ctx)
}

// prune は新しい方からmaxEvents件を残して古いイベントを削除する。
// rowidは挿入順に増えるので、rowidで新旧を判定する。
func (a *auditStore) prune(ctx context.Context) error {
	if a.maxEvents <= 0 {
		return nil
	}
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM auth_events WHERE rowid <= (
			SELECT rowid FROM auth_events ORDER BY rowid DESC LIMIT 1 OFFSET ?
		)`,
		a.maxEvents,
	)
	if err != nil {
		return fmt.Errorf("古い監査イベントの削除に失敗: %w", err)
	}
	return nil
}

// Count は保存されているイベントの件数を返す。
func (a *auditStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auth_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("監査イベントの件数取得に失敗: %w", err)
	}
	return n, nil
}

// Recent は新しい順に最大limit件のイベントを返す。eventTypeが空の場合は全種類。
func (a *auditStore) Recent(ctx context.Context, eventType event.Type, limit int) ([]event.Event, error) {
	query := `SELECT id, type, subject, remote_addr, request_id, data, created_at FROM auth_events`
	args := []any{}
	if eventType != "" {
		query += ` WHERE type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("監査イベントの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []event.Event{}
	for rows.Next() {
		var e event.Event
		var typ, data, createdAt string
		if err := rows.Scan(&e.ID, &typ, &e.Subject, &e.RemoteAddr, &e.RequestID, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("監査イベントの読み取りに失敗: %w", err)
		}
		e.Type = event.Type(typ)
		e.Data = json.RawMessage(data)
		if e.CreatedAt, err = time.Parse(auditTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("作成日時の解析に失敗: %q: %w", createdAt, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
