package handlers

import (
	"html/template"
	"log"
	"net/http"

	"stremdb/models"
)

// ConfigureHandler serves the install/configuration page where users pick
// their language and quality preferences and get a manifest URL back.
type ConfigureHandler struct {
	tmpl *template.Template
}

// NewConfigureHandler creates a new ConfigureHandler.
func NewConfigureHandler() *ConfigureHandler {
	return &ConfigureHandler{tmpl: template.Must(template.New("configure").Parse(configurePage))}
}

// GetConfigurePage renders the configuration form pre-filled with defaults.
func (h *ConfigureHandler) GetConfigurePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, models.DefaultSettings()); err != nil {
		log.Printf("[configure] template render failed: %v", err)
	}
}

// configurePage builds the manifest URL client-side with the same
// single-letter-key JSON / base64 encoding the server decodes.
const configurePage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1.0" />
	<title>StremIMDb - Configure Addon</title>
	<style>
		* { box-sizing: border-box; margin: 0; padding: 0; }
		body {
			font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
			background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
			min-height: 100vh;
			display: flex;
			justify-content: center;
			align-items: center;
			padding: 20px;
		}
		.container {
			background: white;
			border-radius: 12px;
			box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
			padding: 40px;
			max-width: 600px;
			width: 100%;
		}
		.header { text-align: center; margin-bottom: 30px; }
		.header img { width: 200px; margin-bottom: 20px; }
		h1 { color: #333; font-size: 28px; margin-bottom: 10px; }
		.subtitle { color: #666; font-size: 16px; }
		.form-group { margin-bottom: 25px; }
		label { display: block; color: #333; font-weight: 600; margin-bottom: 8px; font-size: 14px; }
		input[type="text"] {
			width: 100%;
			padding: 12px;
			border: 2px solid #e0e0e0;
			border-radius: 6px;
			font-size: 14px;
		}
		input[type="text"]:focus { outline: none; border-color: #667eea; }
		.checkbox-group { display: flex; align-items: center; gap: 10px; }
		input[type="checkbox"] { width: 20px; height: 20px; cursor: pointer; }
		.checkbox-group label { margin: 0; cursor: pointer; }
		.button {
			width: 100%;
			padding: 14px;
			background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
			color: white;
			border: none;
			border-radius: 6px;
			font-size: 16px;
			font-weight: 600;
			cursor: pointer;
		}
		.result {
			margin-top: 25px;
			padding: 20px;
			background: #f5f5f5;
			border-radius: 6px;
			display: none;
		}
		.result.show { display: block; }
		.result h3 { color: #333; font-size: 16px; margin-bottom: 12px; }
		.url-display {
			background: white;
			padding: 12px;
			border-radius: 4px;
			border: 2px solid #e0e0e0;
			word-break: break-all;
			font-family: "Courier New", monospace;
			font-size: 13px;
			color: #667eea;
			margin-bottom: 12px;
		}
		.copy-button, .install-button {
			padding: 10px 20px;
			color: white;
			border: none;
			border-radius: 4px;
			cursor: pointer;
			font-size: 14px;
			font-weight: 600;
			text-decoration: none;
			display: inline-block;
		}
		.copy-button { background: #667eea; margin-right: 10px; }
		.install-button { background: #28a745; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<img src="https://upload.wikimedia.org/wikipedia/commons/thumb/6/69/IMDB_Logo_2016.svg/575px-IMDB_Logo_2016.svg.png" alt="IMDb Logo" />
			<h1>StremIMDb Addon</h1>
			<p class="subtitle">Configure your IMDb metadata preferences</p>
		</div>

		<form id="settingsForm">
			<div class="form-group">
				<label for="languageCode">Language Code</label>
				<input type="text" id="languageCode" name="languageCode"
					value="{{.LanguageCode}}" placeholder="e.g., en-US, es-ES, fr-FR" />
			</div>

			<div class="form-group">
				<div class="checkbox-group">
					<input type="checkbox" id="hideLowQuality" name="hideLowQuality"
						{{if .HideLowQuality}}checked{{end}} />
					<label for="hideLowQuality">Hide low quality content</label>
				</div>
			</div>

			<button type="submit" class="button">Generate Manifest URL</button>
		</form>

		<div class="result" id="result">
			<h3>Your Manifest URL:</h3>
			<div class="url-display" id="manifestUrl"></div>
			<button type="button" class="copy-button" onclick="copyToClipboard()">Copy URL</button>
			<a id="installLink" class="install-button" target="_blank">Install in Stremio</a>
		</div>
	</div>

	<script>
		document.getElementById("settingsForm").addEventListener("submit", function (e) {
			e.preventDefault();

			var encoded = {
				l: document.getElementById("languageCode").value,
				h: document.getElementById("hideLowQuality").checked,
			};
			var base64 = btoa(JSON.stringify(encoded));

			var baseUrl = window.location.protocol + "//" + window.location.host;
			var manifestUrl = baseUrl + "/" + base64 + "/manifest.json";

			document.getElementById("manifestUrl").textContent = manifestUrl;
			document.getElementById("installLink").href =
				"stremio://" + manifestUrl.replace(/^https?:\/\//, "");
			document.getElementById("result").classList.add("show");
		});

		function copyToClipboard() {
			var url = document.getElementById("manifestUrl").textContent;
			navigator.clipboard.writeText(url).then(function () {
				var button = document.querySelector(".copy-button");
				var originalText = button.textContent;
				button.textContent = "Copied!";
				setTimeout(function () { button.textContent = originalText; }, 2000);
			});
		}
	</script>
</body>
</html>
`
