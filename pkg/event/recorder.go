package event

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// Recorder は監査イベントを記録する。
type Recorder interface {
	Record(ctx context.Context, e *Event) error
}

// LogRecorder は監査イベントを1行のJSONとして標準ロガーに出力する。
type LogRecorder struct{}

// Record はイベントをログに出力する。
func (LogRecorder) Record(_ context.Context, e *Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	log.Printf("[Audit] %s", line)
	return nil
}

// MultiRecorder は複数の Recorder に同じイベントを記録する。
// 一部が失敗しても残りへの記録は続け、エラーはまとめて返す。
type MultiRecorder []Recorder

// Record はすべての Recorder にイベントを渡す。
func (m MultiRecorder) Record(ctx context.Context, e *Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
