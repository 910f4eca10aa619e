package api

import (
	"strings"

	"fusion-demo/internal/domain/valueobjects"
)

// ファイルピッカーに渡す受付形式
var acceptedImageTypes = strings.Join(valueobjects.AcceptedMimeTypes, ",")

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>Interaction Fusion</title>
<script src="https://cdn.tailwindcss.com"></script>
<style>
body { font-family: Inter, system-ui, -apple-system, Segoe UI, Roboto, sans-serif; }
.loader{border:8px solid #f3f3f3;border-top:8px solid #6366f1;border-radius:50%;width:56px;height:56px;animation:spin 1.2s linear infinite}
@keyframes spin{0%{transform:rotate(0)}100%{transform:rotate(360deg)}}
.slot-preview{width:100%;height:260px;background:#f9fafb;border:2px dashed #d1d5db;display:flex;align-items:center;justify-content:center;overflow:hidden;border-radius:8px;cursor:pointer;transition:all 0.3s ease}
.slot-preview:hover{border-color:#6366f1;background:#f3f4f6}
.slot-preview img{max-width:100%;max-height:100%;object-fit:contain}
.result-preview{width:100%;height:420px;background:#f3f4f6;border:2px dashed #d1d5db;display:flex;align-items:center;justify-content:center;overflow:hidden;border-radius:8px}
.result-preview img{max-width:100%;max-height:100%;object-fit:contain}
</style>
</head>
<body class="bg-gray-100 min-h-screen">
<div class="max-w-6xl mx-auto px-4 py-8">
<h1 class="text-3xl font-bold text-gray-800 mb-2">Interaction Fusion</h1>
<p class="text-gray-600 mb-6">Upload two photos, pick an interaction, and generate one picture of both people together.</p>

<div class="grid grid-cols-1 md:grid-cols-2 gap-6 mb-6">
{{range $i, $slot := .State.Slots}}
<div class="bg-white rounded-lg shadow p-4">
<h2 class="text-lg font-semibold text-gray-700 mb-3">Person {{$slot.Slot}}</h2>
<label class="slot-preview" for="slot-input-{{$slot.Slot}}">
<img id="slot-preview-{{$slot.Slot}}" alt="Person {{$slot.Slot}}" class="{{if not $slot.Filled}}hidden{{end}}" src="{{index $.Previews $i}}"/>
<span id="slot-placeholder-{{$slot.Slot}}" class="text-gray-400 {{if $slot.Filled}}hidden{{end}}">Click to upload an image</span>
</label>
<input type="file" id="slot-input-{{$slot.Slot}}" data-slot="{{$slot.Slot}}" name="image" accept="{{$.Accept}}" class="hidden slot-input"/>
<p id="slot-error-{{$slot.Slot}}" class="mt-2 text-sm text-red-600 {{if not $slot.Error}}hidden{{end}}">{{$slot.Error}}</p>
</div>
{{end}}
</div>

<div class="bg-white rounded-lg shadow p-4 mb-6 flex flex-col md:flex-row md:items-end gap-4">
<div class="flex-1">
<label for="action-select" class="block text-sm font-medium text-gray-700 mb-1">Interaction</label>
<select id="action-select" name="action" class="w-full border border-gray-300 rounded-lg px-3 py-2">
{{range .Actions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
{{end}}</select>
</div>
<button type="button" id="fuse-btn" class="px-6 py-2 bg-indigo-600 text-white rounded-lg hover:bg-indigo-700 disabled:bg-gray-400 disabled:cursor-not-allowed font-medium shadow-sm"{{if not .State.CanDispatch}} disabled{{end}}>Generate</button>
<button type="button" id="reset-btn" class="px-6 py-2 bg-gray-200 text-gray-700 rounded-lg hover:bg-gray-300 disabled:cursor-not-allowed font-medium"{{if .State.Loading}} disabled{{end}}>Clear</button>
</div>

<div class="bg-white rounded-lg shadow p-4">
<div class="flex items-center justify-between mb-3">
<h2 class="text-lg font-semibold text-gray-700">Result</h2>
<a id="download-link" href="/api/result" class="text-indigo-600 hover:underline text-sm {{if not .State.Image}}hidden{{end}}">Download</a>
</div>
<div class="result-preview">
<div id="loader" class="loader {{if not .State.Loading}}hidden{{end}}"></div>
<img id="result-image" alt="Composite" class="{{if not .State.Image}}hidden{{end}}" src="{{.ResultImage}}"/>
<span id="result-placeholder" class="text-gray-400 {{if ne .State.Outcome "idle"}}hidden{{end}}">The generated image will appear here</span>
</div>
<div id="error-banner" class="mt-3 p-3 rounded-lg bg-red-50 border border-red-200 text-red-700 text-sm {{if not .State.Error}}hidden{{end}}">{{.State.Error}}</div>
</div>
</div>

<script>
(function () {
  var fuseBtn = document.getElementById('fuse-btn');
  var resetBtn = document.getElementById('reset-btn');
  var actionSelect = document.getElementById('action-select');
  var loader = document.getElementById('loader');
  var resultImage = document.getElementById('result-image');
  var resultPlaceholder = document.getElementById('result-placeholder');
  var errorBanner = document.getElementById('error-banner');
  var downloadLink = document.getElementById('download-link');

  function toggle(el, visible) {
    el.classList.toggle('hidden', !visible);
  }

  function render(state) {
    toggle(loader, state.loading);
    toggle(resultImage, !!state.image);
    if (state.image) {
      resultImage.src = state.image.dataUrl;
    } else {
      resultImage.removeAttribute('src');
    }
    toggle(downloadLink, !!state.image);
    toggle(resultPlaceholder, state.outcome === 'idle');
    errorBanner.textContent = state.error || '';
    toggle(errorBanner, !!state.error);
    fuseBtn.disabled = !state.canDispatch;
    resetBtn.disabled = state.loading;
    if (state.action) {
      actionSelect.value = state.action;
    }
    (state.slots || []).forEach(function (slot) {
      var slotError = document.getElementById('slot-error-' + slot.slot);
      slotError.textContent = slot.error || '';
      toggle(slotError, !!slot.error);
      if (!slot.filled) {
        toggle(document.getElementById('slot-preview-' + slot.slot), false);
        toggle(document.getElementById('slot-placeholder-' + slot.slot), true);
      }
    });
  }

  function showLoading() {
    // 前回の結果とエラーは送信時点で消す
    render({ outcome: 'loading', loading: true, canDispatch: false, action: actionSelect.value });
  }

  async function send(url, body) {
    var resp = await fetch(url, { method: 'POST', body: body, credentials: 'same-origin' });
    var data = await resp.json();
    if (data.slots) {
      render(data);
    } else if (data.error) {
      errorBanner.textContent = data.error;
      toggle(errorBanner, true);
    }
    return data;
  }

  document.querySelectorAll('.slot-input').forEach(function (input) {
    input.addEventListener('change', async function () {
      var file = input.files && input.files[0];
      if (!file) {
        return;
      }
      var slot = input.dataset.slot;
      var form = new FormData();
      form.append('image', file);
      try {
        var data = await send('/api/slots/' + slot, form);
        var accepted = (data.slots || []).some(function (s) {
          return String(s.slot) === slot && s.filled && !s.error;
        });
        if (accepted) {
          var preview = document.getElementById('slot-preview-' + slot);
          var reader = new FileReader();
          reader.onload = function () {
            preview.src = reader.result;
            toggle(preview, true);
            toggle(document.getElementById('slot-placeholder-' + slot), false);
          };
          reader.readAsDataURL(file);
        }
      } catch (e) {
        var slotError = document.getElementById('slot-error-' + slot);
        slotError.textContent = 'Failed to read image file';
        toggle(slotError, true);
      }
      input.value = '';
    });
  });

  actionSelect.addEventListener('change', function () {
    var form = new FormData();
    form.append('action', actionSelect.value);
    send('/api/action', form).catch(function () {});
  });

  fuseBtn.addEventListener('click', async function () {
    if (fuseBtn.disabled) {
      return;
    }
    showLoading();
    try {
      await send('/api/fuse', new FormData());
    } catch (e) {
      var state = await fetch('/api/state', { credentials: 'same-origin' }).then(function (r) { return r.json(); });
      render(state);
    }
  });

  resetBtn.addEventListener('click', function () {
    send('/api/reset', new FormData()).catch(function () {});
  });
})();
</script>
</body>
</html>`
