package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("LoginSucceededDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		expiresAt := time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC)
		data := LoginSucceededData{TokenID: "jti-1", ExpiresAt: expiresAt}

		before := time.Now().UTC()
		ev, err := New(TypeAdminLoginSucceeded, "ops@example.com", data)
		after := time.Now().UTC()

		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev == nil {
			t.Fatal("New()がnilを返した")
		}

		// UUIDが生成されていること
		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.Type != TypeAdminLoginSucceeded {
			t.Errorf("Type = %q, want %q", ev.Type, TypeAdminLoginSucceeded)
		}
		if ev.Subject != "ops@example.com" {
			t.Errorf("Subject = %q, want %q", ev.Subject, "ops@example.com")
		}

		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		var decoded LoginSucceededData
		if err := json.Unmarshal(ev.Data, &decoded); err != nil {
			t.Fatalf("Dataのデシリアライズに失敗: %v", err)
		}
		if decoded.TokenID != "jti-1" {
			t.Errorf("Data.TokenID = %q, want %q", decoded.TokenID, "jti-1")
		}
		if !decoded.ExpiresAt.Equal(expiresAt) {
			t.Errorf("Data.ExpiresAt = %v, want %v", decoded.ExpiresAt, expiresAt)
		}
	})

	t.Run("未認証のイベントではSubjectがJSONに含まれないこと", func(t *testing.T) {
		t.Parallel()

		ev, err := New(TypeAdminLoginFailed, "", LoginFailedData{Reason: "invalid_credentials"})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		raw, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("イベントのシリアライズに失敗: %v", err)
		}
		if strings.Contains(string(raw), `"subject"`) {
			t.Errorf("subjectフィールドが出力された: %s", raw)
		}
	})

	t.Run("連続して生成したイベントのIDが異なること", func(t *testing.T) {
		t.Parallel()

		ev1, err := New(TypeAdminLoggedOut, "", LoggedOutData{})
		if err != nil {
			t.Fatalf("1回目のNew()でエラーが発生: %v", err)
		}
		ev2, err := New(TypeAdminLoggedOut, "", LoggedOutData{})
		if err != nil {
			t.Fatalf("2回目のNew()でエラーが発生: %v", err)
		}
		if ev1.ID == ev2.ID {
			t.Errorf("異なるイベントが同じIDを持っている: %q", ev1.ID)
		}
	})

	t.Run("シリアライズ不可能なデータでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev, err := New(TypeAdminAccessDenied, "", make(chan int))
		if err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
		if ev != nil {
			t.Error("エラー時にnilでないEventが返った")
		}
	})
}

// TestDecodeData はDecodeData関数でイベントデータを正しくデシリアライズできることを検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("AccessDeniedDataを正しくデコードできること", func(t *testing.T) {
		t.Parallel()

		want := AccessDeniedData{Path: "/admin/dashboard", Transition: "invalid_credential", Reason: "expired"}
		ev, err := New(TypeAdminAccessDenied, "", want)
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		decoded, err := DecodeData[AccessDeniedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if *decoded != want {
			t.Errorf("DecodeData() = %+v, want %+v", *decoded, want)
		}
	})

	t.Run("不正なJSONではエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: json.RawMessage(`{"path":`)}
		if _, err := DecodeData[AccessDeniedData](ev); err == nil {
			t.Error("DecodeData()がエラーを返すべきだが、nilが返った")
		}
	})
}

// stubRecorder は記録したイベントを保持するテスト用Recorder。
type stubRecorder struct {
	events []*Event
	err    error
}

func (s *stubRecorder) Record(_ context.Context, e *Event) error {
	s.events = append(s.events, e)
	return s.err
}

// TestMultiRecorder はMultiRecorderを検証する。
func TestMultiRecorder(t *testing.T) {
	t.Parallel()

	t.Run("一部が失敗しても全てのRecorderに記録されエラーがまとめて返ること", func(t *testing.T) {
		t.Parallel()

		errBroken := errors.New("書き込み失敗")
		first := &stubRecorder{err: errBroken}
		second := &stubRecorder{}

		ev, err := New(TypeAdminLoggedOut, "", LoggedOutData{HadSession: true})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		err = MultiRecorder{first, second, LogRecorder{}}.Record(context.Background(), ev)
		if !errors.Is(err, errBroken) {
			t.Errorf("err = %v, want %v", err, errBroken)
		}
		if len(first.events) != 1 || len(second.events) != 1 {
			t.Errorf("記録数 = (%d, %d), want (1, 1)", len(first.events), len(second.events))
		}
	})
}
