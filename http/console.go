package http

import (
	"io"
	"net/http"
)

// consoleHTML is the built-in session console served from GET / when
// text/html is negotiated in public mode. It captures the bearer token
// from the first response and lets a browser poke at its own keys.
const consoleHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>stash console</title>
<style>
body { font-family: monospace; margin: 2em; }
input, select, textarea { font-family: inherit; margin: 0.2em 0; }
pre { background: #f4f4f4; padding: 1em; }
</style>
</head>
<body>
<h1>stash console</h1>
<p>session: <span id="client">(none)</span></p>
<div>
  <input id="key" placeholder="key">
  <select id="method">
    <option>GET</option><option>POST</option><option>PUT</option><option>DELETE</option>
  </select>
  <br>
  <textarea id="body" rows="4" cols="60" placeholder="body (json or text)"></textarea>
  <br>
  <button onclick="send()">send</button>
</div>
<pre id="out"></pre>
<script>
var token = null;
function send() {
  var key = document.getElementById('key').value;
  var method = document.getElementById('method').value;
  var body = document.getElementById('body').value;
  var headers = {'Accept': 'application/json'};
  if (token) headers['Authorization'] = token;
  if (method === 'POST' || method === 'PUT') {
    try { JSON.parse(body); headers['Content-Type'] = 'application/json'; }
    catch (e) { headers['Content-Type'] = 'text/plain'; }
  }
  fetch('/' + encodeURIComponent(key), {method: method, headers: headers,
    body: (method === 'POST' || method === 'PUT') ? body : undefined})
  .then(function (resp) {
    token = resp.headers.get('Authorization');
    if (token) {
      document.getElementById('client').textContent =
        JSON.parse(atob(token.split('.')[1])).sub;
    }
    return resp.text().then(function (text) {
      document.getElementById('out').textContent = resp.status + '\n' + text;
    });
  });
}
</script>
</body>
</html>`

func writeConsole(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, consoleHTML)
}
