package model

// A Todo represents a database record and the rendered API response.
// A todo belongs to exactly one user and is only ever visible to its owner.
type Todo struct {
	Base `msgpack:",inline" storm:"inline"`

	UserID    string `json:"user_uuid" msgpack:"user_id"   storm:"index"`
	Text      string `json:"text"      msgpack:"text"`
	Completed bool   `json:"completed" msgpack:"completed" storm:"index"`
}
