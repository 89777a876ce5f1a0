package dashboard

// FeedbackKind selects the style of the status line.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Messages shown in the status line.
const (
	MsgLoadFailed   = "Não foi possível carregar os dados do orçamento."
	MsgRowsFailed   = "Não foi possível carregar as despesas."
	MsgCreated      = "Despesa cadastrada com sucesso!"
	MsgCreateFailed = "Não foi possível cadastrar a despesa. Tente novamente."
)

// Feedback is the single status line under the expense form. The zero value
// is a cleared line.
type Feedback struct {
	Message string
	Kind    FeedbackKind
}

// Success returns a success status line.
func Success(msg string) Feedback { return Feedback{Message: msg, Kind: FeedbackSuccess} }

// Failure returns an error status line.
func Failure(msg string) Feedback { return Feedback{Message: msg, Kind: FeedbackError} }

// Class is the CSS class of the status line. A cleared line has none.
func (f Feedback) Class() string {
	if f.Message == "" {
		return ""
	}
	if f.Kind == FeedbackSuccess {
		return string(FeedbackSuccess)
	}
	return string(FeedbackError)
}

// Empty reports whether the status line is cleared.
func (f Feedback) Empty() bool { return f.Message == "" }
