package dune

import "fmt"

// Parameter is a single query parameter of a saved Dune query.
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EnumParameter builds an enum-typed query parameter.
func EnumParameter(key, value string) Parameter {
	return Parameter{Key: key, Value: value}
}

// Query identifies a saved query on Dune together with the parameters to
// execute it with. Name is only used for logging.
type Query struct {
	Name       string
	QueryID    int
	Parameters []Parameter
}

// URL returns the human-facing address of the query, handy in logs.
func (q Query) URL() string {
	return fmt.Sprintf("https://dune.com/queries/%d", q.QueryID)
}

func (q Query) parameterMap() map[string]string {
	if len(q.Parameters) == 0 {
		return nil
	}
	params := make(map[string]string, len(q.Parameters))
	for _, p := range q.Parameters {
		params[p.Key] = p.Value
	}
	return params
}
