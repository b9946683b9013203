package connection

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

// flexID accepts a JSON string or number.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// flexRoles accepts ["ROLE_USER"], [{"authority":"ROLE_USER"}] and
// [{"name":"ROLE_USER"}].
type flexRoles []string

func (r *flexRoles) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Authority string `json:"authority"`
			Name      string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		switch {
		case obj.Authority != "":
			out = append(out, obj.Authority)
		case obj.Name != "":
			out = append(out, obj.Name)
		}
	}
	*r = out
	return nil
}

// flexTime accepts RFC 3339 timestamps and zone-less local date-times.
type flexTime time.Time

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Unknown encodings are dropped rather than failing the whole user.
		*t = flexTime{}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = flexTime{}
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = flexTime(v)
		return nil
	}
	for _, layout := range localLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = flexTime(v)
			return nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = flexTime(time.UnixMilli(ms).UTC())
	}
	return nil
}

// userWire is the user object as sent by /users/me and nested login replies.
type userWire struct {
	ID        flexID    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     flexRoles `json:"roles"`
	CreatedAt flexTime  `json:"createdAt"`
}

func (u userWire) empty() bool {
	return u.ID == "" && u.Email == "" && u.Name == ""
}

func (u userWire) toDomain() *domain.User {
	return &domain.User{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Roles:     []string(u.Roles),
		CreatedAt: time.Time(u.CreatedAt),
	}
}

// loginWire covers both the nested {token, user} reply and the flat
// {token, refreshToken, id, name, email, roles} reply.
type loginWire struct {
	userWire
	Token        string    `json:"token"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *userWire `json:"user"`
}

func (w loginWire) toDomain() domain.LoginResponse {
	resp := domain.LoginResponse{
		Token:        w.Token,
		RefreshToken: w.RefreshToken,
	}
	if resp.Token == "" {
		resp.Token = w.AccessToken
	}
	switch {
	case w.User != nil && !w.User.empty():
		resp.User = w.User.toDomain()
	case !w.userWire.empty():
		resp.User = w.userWire.toDomain()
	}
	return resp
}

// successFlag reads an optional {"success": bool} body flag.
type successFlag struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// parseSuccessFlag reads the flag from a JSON object body. Plain text,
// scalars and arrays report false.
func parseSuccessFlag(body []byte) (successFlag, bool) {
	var flag successFlag
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return flag, false
	}
	if err := json.Unmarshal(trimmed, &flag); err != nil {
		return flag, false
	}
	return flag, true
}
