package adminauth

import (
	"crypto/subtle"
	"fmt"
)

// RoleAdmin は管理者に付与される唯一のロール。
const RoleAdmin = "admin"

// Identity は起動時に設定から読み込まれる唯一の管理者を表す。
// プロセスの生存期間中は変更しない。
type Identity struct {
	// Identifier はログインID（メールアドレス形式を想定）。
	Identifier string
	// Secret はログインに使う秘密値。
	Secret string
}

// Validate は管理者設定が空でないことを確認する。
func (i Identity) Validate() error {
	if i.Identifier == "" {
		return fmt.Errorf("%w: 管理者IDが設定されていません", ErrInternal)
	}
	if i.Secret == "" {
		return fmt.Errorf("%w: 管理者パスワードが設定されていません", ErrInternal)
	}
	return nil
}

// matches は入力値が管理者設定と完全一致するかを返す。
// 両方の項目を必ず比較し、どちらが不一致だったかは外に出さない。
func (i Identity) matches(identifier, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(identifier), []byte(i.Identifier))
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(i.Secret))
	return idOK&secretOK == 1
}
