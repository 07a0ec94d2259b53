// Package repository は永続化層のインターフェースと実装を提供する。
package repository

import "context"

// CredentialRepository は業者セッションの認証情報を永続化するリポジトリのインターフェース。
// キーバリュー形式で、キーは session パッケージが定義する
// "vendorId" / "vendorToken" の2つのみが使用される。
type CredentialRepository interface {
	// Get は指定キーの値を返す。キーが存在しない場合はok=falseを返す（エラーにはならない）。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set は指定キーの値を書き込む。既存の値は上書きされる。
	Set(ctx context.Context, key, value string) error
	// Delete は指定キーを削除する。キーが存在しない場合も成功扱いとする。
	Delete(ctx context.Context, key string) error
}
