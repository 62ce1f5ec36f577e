package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "convert_error":
			return "変換に失敗しました"
		case "verify_failed":
			return "検証コールバックを満たしていません"
		case "out_of_range":
			return "範囲外の値です"
		case "invalid_enum":
			return "許可されていない値です"
		case "unknown_key":
			return "未知のキーです"
		case "undefined_field":
			return "未定義のフィールドです"
		case "class_mismatch":
			return "クラスタグが一致しません"
		case "malformed_payload":
			return "マッピングが必要です"
		case "parse_error":
			return "解析エラー"
		case "encode_error":
			return "エンコードに失敗しました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "convert_error":
			return "conversion failed"
		case "verify_failed":
			return "does not satisfy verification callback"
		case "out_of_range":
			return "value out of range"
		case "invalid_enum":
			return "value not permitted"
		case "unknown_key":
			return "unknown key"
		case "undefined_field":
			return "undefined field"
		case "class_mismatch":
			return "class tag mismatch"
		case "malformed_payload":
			return "expected a mapping"
		case "parse_error":
			return "parse error"
		case "encode_error":
			return "encode failed"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
