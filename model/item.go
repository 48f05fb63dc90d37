// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// RequiredFields は作成・更新時に必須となるフィールド名の一覧です（順序はエラーメッセージに使用）。
var RequiredFields = []string{
	"Name",
	"Address",
	"Date",
	"Materials_Subtotal",
	"Labor_Subtotal",
	"Total",
	"Invoice_no",
	"Job",
}

// Item は請求書相当のレコードを表すモデルです。
type Item struct {
	ID                int64     `json:"Id"`
	Name              string    `json:"Name"`
	Address           string    `json:"Address"`
	Date              string    `json:"Date"`
	MaterialsSubtotal Amount    `json:"Materials_Subtotal"`
	LaborSubtotal     Amount    `json:"Labor_Subtotal"`
	Total             Amount    `json:"Total"`
	InvoiceNo         InvoiceNo `json:"Invoice_no"`
	Job               string    `json:"Job"`
	PdfLocation       *string   `json:"Pdf_Location"` // 未指定の場合はnull
}

// ItemPayload はリクエストボディとして受け取ったアイテムです。
// キーの有無と送信された値をそのまま保持します。
type ItemPayload struct {
	fields map[string]json.RawMessage
}

// ParseItemPayload はリクエストボディをJSONオブジェクトとして解析します。
// 空のボディは空オブジェクトとして扱います。
func ParseItemPayload(body []byte) (*ItemPayload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, NewValidationError("Invalid JSON format")
	}

	return &ItemPayload{fields: fields}, nil
}

// AllRequiredTruthy は作成時の検証です。
// 必須フィールドがすべて存在し、かつ値がfalsy（null, false, "", 0）でないことを確認します。
func (p *ItemPayload) AllRequiredTruthy() error {
	var missing []string
	for _, name := range RequiredFields {
		if !isTruthy(p.fields[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing)
	}
	return nil
}

// HasRequiredKeys は更新時の検証です。
// 必須フィールドのキーが存在することのみを確認し、値がfalsyでも受け付けます。
func (p *ItemPayload) HasRequiredKeys() error {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := p.fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing)
	}
	return nil
}

// Item はペイロードをItemに変換します。IDは引数の値が設定されます。
// falsyな値（null, false, "", 0）は型によらずそのフィールドのゼロ値になり、
// Pdf_Locationはnullになります。
func (p *ItemPayload) Item(id int64) (*Item, error) {
	item := Item{ID: id}
	targets := item.fieldTargets()

	for _, name := range writableFields {
		raw, ok := p.fields[name]
		if !ok || !isTruthy(raw) {
			continue
		}
		if err := json.Unmarshal(raw, targets[name]); err != nil {
			return nil, NewValidationError("Invalid value for field: " + name)
		}
	}

	return &item, nil
}

// writableFields はリクエストから設定できるフィールド名です（エラー判定の順序）。
var writableFields = append(slices.Clone(RequiredFields), "Pdf_Location")

// fieldTargets はJSONのキー名とデコード先のフィールドの対応を返します。
func (item *Item) fieldTargets() map[string]any {
	return map[string]any{
		"Name":               &item.Name,
		"Address":            &item.Address,
		"Date":               &item.Date,
		"Materials_Subtotal": &item.MaterialsSubtotal,
		"Labor_Subtotal":     &item.LaborSubtotal,
		"Total":              &item.Total,
		"Invoice_no":         &item.InvoiceNo,
		"Job":                &item.Job,
		"Pdf_Location":       &item.PdfLocation,
	}
}

// Echo は送信されたフィールドのコピーを返します。
// overrides のキーは送信値より優先されます。
func (p *ItemPayload) Echo(overrides map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(p.fields)+len(overrides))
	for k, v := range p.fields {
		out[k] = v
	}
	for k, v := range overrides {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}

// EchoWithDefaults は送信されたフィールドのコピーを返します。
// defaults のキーは送信値に同名のキーが無い場合のみ設定されます。
func (p *ItemPayload) EchoWithDefaults(defaults map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(p.fields)+len(defaults))
	for k, v := range defaults {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}
		out[k] = b
	}
	for k, v := range p.fields {
		out[k] = v
	}
	return out, nil
}
