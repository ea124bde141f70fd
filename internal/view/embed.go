package view

import (
	"enterprise-portal/internal/models"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const PowerBISDKURL = "https://cdn.jsdelivr.net/npm/powerbi-client@2.23.1/dist/powerbi.min.js"

// EmbedRenderer draws the content pane of a selected item. The browser
// renderer hands the pane to the vendor widgets; tests use NoopRenderer.
type EmbedRenderer interface {
	Copilot(item models.MenuItem, cfg models.CopilotConfig) Node
	PowerBI(item models.MenuItem) Node
	Head() Node
}

type BrowserRenderer struct {
	SDKURL string
}

func (BrowserRenderer) Copilot(item models.MenuItem, cfg models.CopilotConfig) Node {
	return Div(Class("iframe-wrapper"),
		IFrame(
			Src(cfg.EmbedURL),
			Class("embed-frame"),
			Title(item.Name),
			Attr("allow", "microphone"),
		),
	)
}

func (BrowserRenderer) PowerBI(item models.MenuItem) Node {
	return Div(Class("iframe-wrapper"),
		Div(
			ID("powerbi-container-"+item.ID),
			Class("powerbi-container"),
			Data("embed-endpoint", "/api/menu/"+item.ID+"/embed"),
			Div(Class("loading-state"), P(Text("Loading Power BI Report..."))),
		),
		Div(
			Class("error-state"),
			Attr("hidden", ""),
			H3(Text("Unable to Load Report")),
			P(Class("error-message")),
			Button(Type("button"), Class("btn retry-btn"), Text("Try Again")),
		),
		Script(Raw(powerBIScript)),
	)
}

func (r BrowserRenderer) Head() Node {
	src := r.SDKURL
	if src == "" {
		src = PowerBISDKURL
	}
	return Script(Src(src), Defer())
}

// NoopRenderer renders inert placeholders.
type NoopRenderer struct{}

func (NoopRenderer) Copilot(item models.MenuItem, cfg models.CopilotConfig) Node {
	return Div(Class("embed-placeholder"), Data("item-id", item.ID), Data("embed-url", cfg.EmbedURL))
}

func (NoopRenderer) PowerBI(item models.MenuItem) Node {
	return Div(Class("embed-placeholder"), Data("item-id", item.ID))
}

func (NoopRenderer) Head() Node {
	return nil
}

const powerBIScript = `(function () {
  var script = document.currentScript;
  var wrapper = script.parentElement;
  var container = wrapper.querySelector('.powerbi-container');
  var errorBox = wrapper.querySelector('.error-state');
  var message = errorBox.querySelector('.error-message');
  var incomplete = 'Power BI configuration incomplete. Please configure the report settings in the admin panel.';

  var loading = container.querySelector('.loading-state');

  function fail(text) {
    container.hidden = true;
    loading.hidden = true;
    container.dataset.state = 'error';
    message.textContent = text;
    errorBox.hidden = false;
  }

  function load() {
    errorBox.hidden = true;
    container.hidden = false;
    loading.hidden = false;
    container.dataset.state = 'loading';
    fetch(container.dataset.embedEndpoint, { credentials: 'same-origin' })
      .then(function (res) {
        return res.json().then(function (body) { return { status: res.status, body: body }; });
      })
      .then(function (r) {
        if (r.status === 400) { fail(incomplete); return; }
        if (r.status !== 200) { fail(r.body.error || 'Failed to load report'); return; }
        if (!window.powerbi || !window['powerbi-client']) { fail('Power BI client library is not available'); return; }
        var models = window['powerbi-client'].models;
        window.powerbi.reset(container);
        container.appendChild(loading);
        var report = window.powerbi.embed(container, {
          type: 'report',
          tokenType: models.TokenType.Embed,
          accessToken: r.body.embedToken,
          embedUrl: r.body.embedUrl,
          id: r.body.reportId,
          settings: {
            panes: { filters: { visible: false }, pageNavigation: { visible: true } },
            background: models.BackgroundType.Transparent
          }
        });
        report.off('loaded');
        report.off('rendered');
        report.off('error');
        report.on('loaded', function () {
          loading.hidden = true;
          container.dataset.state = 'loaded';
        });
        report.on('rendered', function () { container.dataset.state = 'rendered'; });
        report.on('error', function (event) {
          var detail = event && event.detail;
          fail((detail && (detail.detailedMessage || detail.message)) || 'Failed to load report');
        });
      })
      .catch(function (err) { fail(err.message || 'Failed to load report'); });
  }

  errorBox.querySelector('.retry-btn').addEventListener('click', load);
  document.addEventListener('DOMContentLoaded', load);
})();`
