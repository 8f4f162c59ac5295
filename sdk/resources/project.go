package resources

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/params"
)

// Project describes the project the client is bound to.
type Project struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Version    int64    `json:"version"`
	Countries  []string `json:"countries"`
	Currencies []string `json:"currencies"`
	Languages  []string `json:"languages"`
}

// ProjectGet fetches the project settings. It implements sdk.Command.
type ProjectGet struct{}

// HTTPRequest implements sdk.Command. The project lives at the project
// root, so the path is empty.
func (ProjectGet) HTTPRequest() (*sdk.HTTPRequest, error) {
	return sdk.Get("", params.List{}), nil
}

// ResultType implements sdk.Command.
func (ProjectGet) ResultType() codec.Type[Project] {
	return codec.Of[Project]()
}
