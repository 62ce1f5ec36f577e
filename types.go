package rekodo

// KeyPolicy controls how keys that do not correspond to a declared field are
// handled during ValidateData/ValidateUpdate/LoadData.
type KeyPolicy int

const (
	PolicyDefault KeyPolicy = iota // Defer to the schema's configured policy.
	KeyStrict                      // Reject unknown keys with an error.
	KeyLoose                       // Drop unknown keys.
	KeySloppy                      // Copy unknown keys through unvalidated.
)

// TagStyle selects how the class tag is embedded in serialized output.
type TagStyle int

const (
	TagDefault   TagStyle = iota // Defer to the schema's configured style.
	TagFlat                      // {"__class__": "<tag>", ...fields...}
	TagSingleKey                 // {"<tag>": {...fields...}}
)

// VerifyMode is a tri-state override for class-tag verification on load.
type VerifyMode int

const (
	VerifyDefault VerifyMode = iota // Defer to the schema's configured setting.
	VerifyOn
	VerifyOff
)

// IncludeMode is a tri-state override for class-tag inclusion on encode.
type IncludeMode int

const (
	IncludeDefault IncludeMode = iota // Defer to the schema's configured setting.
	IncludeOn
	IncludeOff
)

// LoadOpt bundles per-call overrides for LoadData/FromJSON/FromYAML.
// Zero values defer to the schema.
type LoadOpt struct {
	Policy KeyPolicy
	Verify VerifyMode
}

// EncodeOpt bundles per-call overrides for ToJSON/ToYAML.
// Zero values defer to the schema.
type EncodeOpt struct {
	IncludeClass IncludeMode
	Style        TagStyle
}

func lastLoadOpt(opts []LoadOpt) LoadOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return LoadOpt{}
}

func lastEncodeOpt(opts []EncodeOpt) EncodeOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return EncodeOpt{}
}
