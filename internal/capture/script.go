// Package capture holds the in-page JavaScript capture listener set
// (C2) as a literal string resource compiled into the binary. The
// outer recorder state machine (pkg/recorder) is fully typed Go; this
// is the one piece of source-of-record JS because it has to run
// inside the browser (spec §9 "Injected in-page code").
package capture

// Marker is the process-wide-in-page flag name guarding against double
// registration of the capture listeners across repeated injection
// (spec §4.2, §5 "u4arec marker").
const Marker = "__u4aRecMarker"

// CallbackName is the host function the script calls to deliver each
// captured action. It is bound once per tab via the driver's
// exposeFunction/AddBinding equivalent.
const CallbackName = "__u4aRecordAction"

// Script returns the capture listener JS, ready to be evaluated
// immediately in the current document and registered to run on every
// subsequent navigation (evaluateOnNewDocument-equivalent).
//
// Selector synthesis cascades #id -> [name="..."] -> tag.class1.class2
// -> recursive `parent > tag:nth-child(N)`, guaranteeing a resolvable
// selector without library help. Event capture happens in the
// document capture phase so the listener sees events before page
// handlers can cancel them.
func Script() string {
	return `(function() {
  if (window.` + Marker + `) { return; }
  window.` + Marker + ` = true;

  var KEY_WHITELIST = {
    "Enter": true, "Tab": true, "Escape": true, "Backspace": true,
    "Delete": true, "Home": true, "End": true, "PageUp": true,
    "PageDown": true, "Insert": true, "Space": true,
    "ArrowUp": true, "ArrowDown": true, "ArrowLeft": true, "ArrowRight": true
  };

  var TEXT_LIKE = { "text": true, "search": true, "url": true, "tel": true, "password": true };

  function emit(action) {
    try {
      if (typeof window.` + CallbackName + ` !== "function") { return; }
      action.timestamp = Date.now();
      window.` + CallbackName + `(JSON.stringify(action));
    } catch (e) { /* page or context closed: silent no-op */ }
  }

  function nthChildIndex(el) {
    var i = 1, sib = el;
    while ((sib = sib.previousElementSibling) != null) { i++; }
    return i;
  }

  function selectorFor(el) {
    if (!el || el.nodeType !== 1) { return ""; }
    if (el.id) { return "#" + el.id; }
    if (el.getAttribute && el.getAttribute("name")) {
      return "[name=\"" + el.getAttribute("name") + "\"]";
    }
    if (el.className && typeof el.className === "string" && el.className.trim()) {
      var cls = el.className.trim().split(/\s+/).join(".");
      return el.tagName.toLowerCase() + "." + cls;
    }
    var parent = el.parentElement;
    if (!parent) { return el.tagName.toLowerCase(); }
    return selectorFor(parent) + " > " + el.tagName.toLowerCase() + ":nth-child(" + nthChildIndex(el) + ")";
  }

  function isCheckable(el) {
    return el && el.tagName === "INPUT" && (el.type === "checkbox" || el.type === "radio");
  }

  document.addEventListener("click", function(e) {
    var t = e.target;
    var a = { type: "click", selector: selectorFor(t), x: e.clientX, y: e.clientY };
    if (isCheckable(t)) { a.checked = t.checked; }
    emit(a);
  }, true);

  document.addEventListener("input", function(e) {
    var t = e.target;
    if (isCheckable(t)) { return; }
    var a = { type: "input", selector: selectorFor(t), value: t.value };
    if ((t.tagName === "INPUT" || t.tagName === "TEXTAREA") &&
        typeof t.selectionStart === "number" && typeof t.selectionEnd === "number") {
      a.selectionStart = t.selectionStart;
      a.selectionEnd = t.selectionEnd;
    }
    emit(a);
  }, true);

  document.addEventListener("change", function(e) {
    var t = e.target;
    var a = { type: "change", selector: selectorFor(t) };
    if (isCheckable(t)) { a.checked = t.checked; } else { a.value = t.value; }
    emit(a);
  }, true);

  document.addEventListener("keydown", function(e) {
    if (e.ctrlKey || e.altKey || e.metaKey) { return; }
    var key = e.key === " " ? "Space" : e.key;
    if (!KEY_WHITELIST[key]) { return; }
    emit({ type: "keydown", selector: selectorFor(e.target), key: key });
  }, true);

  var scrollState = null; // { target, selector, startX, startY, lastX, lastY, startedAt, timer }

  function flushScroll() {
    if (!scrollState) { return; }
    var s = scrollState;
    scrollState = null;
    emit({
      type: "scroll",
      selector: s.selector,
      startScrollX: s.startX,
      startScrollY: s.startY,
      scrollX: s.lastX,
      scrollY: s.lastY,
      duration: Date.now() - s.startedAt
    });
  }

  document.addEventListener("scroll", function(e) {
    var target = e.target === document ? "window" : e.target;
    var selector = target === "window" ? "window" : selectorFor(target);
    var x = target === "window" ? window.scrollX : target.scrollLeft;
    var y = target === "window" ? window.scrollY : target.scrollTop;

    if (scrollState && scrollState.target !== target) {
      flushScroll();
    }
    if (!scrollState) {
      scrollState = { target: target, selector: selector, startX: x, startY: y, lastX: x, lastY: y, startedAt: Date.now() };
    } else {
      scrollState.lastX = x;
      scrollState.lastY = y;
    }
    if (scrollState.timer) { clearTimeout(scrollState.timer); }
    scrollState.timer = setTimeout(flushScroll, 150);
  }, true);

  var resizeBaseline = { w: window.outerWidth, h: window.outerHeight };
  var resizeTimer = null;

  window.addEventListener("resize", function() {
    if (resizeTimer) { clearTimeout(resizeTimer); }
    resizeTimer = setTimeout(function() {
      var w = window.outerWidth, h = window.outerHeight;
      if (w === resizeBaseline.w && h === resizeBaseline.h) { return; }
      emit({ type: "browser_resize", fromWidth: resizeBaseline.w, fromHeight: resizeBaseline.h, toWidth: w, toHeight: h });
      resizeBaseline = { w: w, h: h };
    }, 300);
  }, true);
})();`
}
