// Package actiongroup implements the Bedrock Agents action group contract:
// the invocation event an agent sends when it selects a function, and the
// response envelope it expects back.
package actiongroup

// MessageVersion is the only envelope version the agent runtime accepts.
const MessageVersion = "1.0"

// Event is one action group invocation as delivered by the agent runtime.
type Event struct {
	MessageVersion          string            `json:"messageVersion,omitempty"`
	Agent                   *Agent            `json:"agent,omitempty"`
	InputText               string            `json:"inputText,omitempty"`
	SessionID               string            `json:"sessionId,omitempty"`
	ActionGroup             string            `json:"actionGroup"`
	Function                string            `json:"function"`
	Parameters              []Parameter       `json:"parameters,omitempty"`
	SessionAttributes       map[string]string `json:"sessionAttributes,omitempty"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes,omitempty"`
}

// Agent identifies the agent that made the invocation.
type Agent struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Alias   string `json:"alias"`
	Version string `json:"version"`
}

// Parameter is one name/value pair selected by the agent.
type Parameter struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// Params folds the ordered parameter list into a lookup map. A name that
// appears more than once resolves to its last value.
func (e Event) Params() Params {
	p := make(Params, len(e.Parameters))
	for _, param := range e.Parameters {
		p[param.Name] = param.Value
	}
	return p
}

// Params maps parameter names to their string values.
type Params map[string]string

// Get returns the value for name and whether it was supplied.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Require returns the value for name or a *MissingParameterError.
func (p Params) Require(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", &MissingParameterError{Name: name}
	}
	return v, nil
}

// Response is the envelope returned for every invocation. Its JSON shape is
// fixed by the agent runtime.
type Response struct {
	MessageVersion string         `json:"messageVersion"`
	Response       ActionResponse `json:"response"`

	err error
}

// ActionResponse echoes the invocation's action group and function.
type ActionResponse struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse FunctionResponse `json:"functionResponse"`
}

type FunctionResponse struct {
	ResponseBody ResponseBody `json:"responseBody"`
}

type ResponseBody struct {
	Text TextBody `json:"TEXT"`
}

// TextBody carries the action result serialized as a JSON string.
type TextBody struct {
	Body string `json:"body"`
}

// NewResponse wraps an already serialized result body.
func NewResponse(actionGroup, function, body string) Response {
	return Response{
		MessageVersion: MessageVersion,
		Response: ActionResponse{
			ActionGroup: actionGroup,
			Function:    function,
			FunctionResponse: FunctionResponse{
				ResponseBody: ResponseBody{
					Text: TextBody{Body: body},
				},
			},
		},
	}
}

// Body returns the serialized action result.
func (r Response) Body() string {
	return r.Response.FunctionResponse.ResponseBody.Text.Body
}

// Err returns the error that was flattened into the body, if any. It is not
// part of the wire format.
func (r Response) Err() error {
	return r.err
}

// FunctionSpec describes one function a Handler serves, for tool registries.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  []ParameterSpec
}

// ParameterSpec describes one string parameter of a function.
type ParameterSpec struct {
	Name        string
	Description string
	Required    bool
}
