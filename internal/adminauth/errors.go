package adminauth

import "errors"

var (
	// ErrBadRequest はログインリクエストに必要な項目が欠けていることを表す。
	ErrBadRequest = errors.New("ログインリクエストが不正です")
	// ErrUnauthorized は認証情報の不一致、またはセッションが無効であることを表す。
	// どの項目が一致しなかったかは区別しない。
	ErrUnauthorized = errors.New("認証情報が正しくありません")
	// ErrInternal は署名・検証基盤の異常を表す。詳細はクライアントに返さない。
	ErrInternal = errors.New("認証基盤で内部エラーが発生しました")
)
