// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ReloadScriptID is the id of the injected live-reload script element.
const ReloadScriptID = "zen-live-reload"

// reloadScript reconnects on close and reloads when the pushed version
// differs from the one the page was served with.
const reloadScript = `(function () {
  var version = %d;
  var scheme = location.protocol === "https:" ? "wss:" : "ws:";
  function connect() {
    var ws = new WebSocket(scheme + "//" + location.host + "/ws");
    ws.onmessage = function (e) {
      try {
        var msg = JSON.parse(e.data);
        if (msg.type === "reload" && msg.version !== version) { location.reload(); }
      } catch (_) {}
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();`

func reloadTag(version uint64) string {
	return fmt.Sprintf(`<script id="%s">%s</script>`, ReloadScriptID, fmt.Sprintf(reloadScript, version))
}

// InjectReload appends the live-reload script to the end of the document
// body. Documents that cannot be parsed get the script appended verbatim.
func InjectReload(doc string, version uint64) string {
	tag := reloadTag(version)

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		log.Debug().Err(err).Msg("preview document did not parse, appending reload script")
		return doc + tag
	}
	parsed.Find("#" + ReloadScriptID).Remove()
	parsed.Find("body").AppendHtml(tag)

	out, err := parsed.Html()
	if err != nil {
		return doc + tag
	}
	return out
}
