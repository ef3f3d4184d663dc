// Package i18n holds the user-facing strings of the updater dialogs.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyNewVersion     = "easy_upd_new_version"
	KeyUpdateNow      = "easy_upd_update_now"
	KeyLater          = "easy_upd_later"
	KeyPermTitle      = "easy_upd_perm_title"
	KeyPermMsg        = "easy_upd_perm_msg"
	KeyGoSettings     = "easy_upd_go_settings"
	KeyCancel         = "easy_upd_cancel"
	KeyChecking       = "easy_upd_checking"
	KeyDownloading    = "easy_upd_downloading"
	KeyAlreadyLatest  = "easy_upd_already_latest"
	KeyCheckError     = "easy_upd_check_error"
	KeyDownloadError  = "easy_upd_download_error"
	KeyParseError     = "easy_upd_parse_error"
	KeyInstallError   = "easy_upd_install_error"
	KeyDefaultContent = "easy_upd_default_content"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyNewVersion:     "New version %s",
		KeyUpdateNow:      "Update now",
		KeyLater:          "Later",
		KeyPermTitle:      "Install permission required",
		KeyPermMsg:        "Allow installing apps from this source to continue the update.",
		KeyGoSettings:     "Open settings",
		KeyCancel:         "Cancel",
		KeyChecking:       "Checking for updates...",
		KeyDownloading:    "Downloading update",
		KeyAlreadyLatest:  "Already the latest version",
		KeyCheckError:     "Update check failed",
		KeyDownloadError:  "Download failed",
		KeyParseError:     "Package validation failed",
		KeyInstallError:   "Install failed",
		KeyDefaultContent: "New version %s detected. Update now for a better experience.",
	},
	language.SimplifiedChinese: {
		KeyNewVersion:     "发现新版本 %s",
		KeyUpdateNow:      "立即更新",
		KeyLater:          "稍后再说",
		KeyPermTitle:      "需要安装权限",
		KeyPermMsg:        "请允许安装未知来源应用以继续更新。",
		KeyGoSettings:     "去开启",
		KeyCancel:         "取消",
		KeyChecking:       "正在检查更新...",
		KeyDownloading:    "正在下载更新",
		KeyAlreadyLatest:  "当前已是最新版本",
		KeyCheckError:     "检查更新失败",
		KeyDownloadError:  "下载失败",
		KeyParseError:     "安装包校验失败",
		KeyInstallError:   "安装失败",
		KeyDefaultContent: "检测到新版本 %s，建议立即更新以获得更好体验。",
	},
}

var (
	cat       = catalog.NewBuilder(catalog.Fallback(language.English))
	supported []language.Tag
	matcher   language.Matcher
)

func init() {
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := cat.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	supported = cat.Languages()
	matcher = language.NewMatcher(supported)
}

// NewPrinter returns a printer for the closest supported language to lang.
// Unknown or empty languages fall back to English.
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Match(lang), message.Catalog(cat))
}

// Match resolves lang to one of the supported catalog languages.
func Match(lang string) language.Tag {
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(desired...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}
