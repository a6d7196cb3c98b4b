// Package overlay is the in-page replay indicator widget (C3): a pure
// DOM overlay that is not part of the captured/replayed flow, invoked
// defensively by the replayer for progress feedback only.
package overlay

// Marker guards idempotent injection across navigations (spec §4.3).
const Marker = "__u4aOverlayMarker"

// Script returns the overlay widget JS: a fixed-position indicator
// pill, a last-action label, and a small scrolling history list.
func Script() string {
	return `(function() {
  if (window.` + Marker + `) { return; }
  window.` + Marker + ` = true;

  var root = document.createElement("div");
  root.id = "u4a-replay-overlay";
  root.style.cssText = "position:fixed;top:12px;right:12px;z-index:2147483647;" +
    "font:12px -apple-system,sans-serif;background:rgba(20,20,20,0.85);color:#fff;" +
    "border-radius:8px;padding:8px 12px;max-width:280px;pointer-events:none;display:none;";

  var indicator = document.createElement("div");
  indicator.id = "u4a-replay-indicator";
  indicator.textContent = "● replaying";

  var lastAction = document.createElement("div");
  lastAction.id = "u4a-replay-last-action";
  lastAction.style.cssText = "margin-top:4px;opacity:0.8;";

  var history = document.createElement("ul");
  history.id = "u4a-replay-history";
  history.style.cssText = "margin:4px 0 0;padding-left:14px;max-height:120px;overflow:hidden;";

  root.appendChild(indicator);
  root.appendChild(lastAction);
  root.appendChild(history);
  document.documentElement.appendChild(root);

  window.__u4aOverlay = {
    show: function() { root.style.display = "block"; },
    hide: function() { root.style.display = "none"; },
    setLast: function(text) {
      lastAction.textContent = text;
      var li = document.createElement("li");
      li.textContent = text;
      history.appendChild(li);
      while (history.children.length > 5) { history.removeChild(history.firstChild); }
    }
  };
})();`
}
