// Package parser turns check endpoint responses into UpdateInfo.
package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/i18n"
	"easyupdate-go/internal/shared"

	"github.com/spf13/cast"
	"golang.org/x/text/message"
)

// Envelope parses responses of the form
//
//	{"data":{"version":12,"filever":"v25101115","ossPath":"http://...","isForce":0,"verDesc":"","filesize":"154132711"}}
//
// Missing or mistyped fields are coerced to their zero values.
type Envelope struct {
	// LocalVersion is the version code of the installed app.
	LocalVersion int64
	// Printer renders the default release notes. Nil means English.
	Printer *message.Printer
}

func (e Envelope) Parse(body string) (shared.UpdateInfo, error) {
	var root map[string]any
	if err := json.Unmarshal([]byte(body), &root); err != nil {
		return shared.UpdateInfo{}, cstmerr.NewParseError("check response is not a JSON object", err)
	}

	data, ok := root["data"].(map[string]any)
	if !ok {
		return shared.UpdateInfo{}, nil
	}

	serverVersion := toInt64(data["version"])
	versionName := cast.ToString(data["filever"])
	content := cast.ToString(data["verDesc"])
	if content == "" {
		content = e.printer().Sprintf(i18n.KeyDefaultContent, versionName)
	}

	info := shared.UpdateInfo{
		HasUpdate:   serverVersion > e.LocalVersion,
		IsForce:     toInt64(data["isForce"]) == 1,
		VersionName: versionName,
		Content:     content,
		DownloadURL: cast.ToString(data["ossPath"]),
	}
	if size := cast.ToString(data["filesize"]); size != "" {
		info.Extra = size
	}
	return info, nil
}

// toInt64 reads numeric strings as base 10; cast would treat "012" as octal.
func toInt64(v any) int64 {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return int64(cast.ToFloat64(s))
	}
	return cast.ToInt64(v)
}

func (e Envelope) printer() *message.Printer {
	if e.Printer == nil {
		return i18n.NewPrinter("en")
	}
	return e.Printer
}
