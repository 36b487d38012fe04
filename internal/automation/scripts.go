package automation

// Page scripts for the messaging flow. Each returns a JSON-friendly
// value the driver decodes; selectors live here and nowhere else.

// loggedInScript reports whether an authenticated session is present.
const loggedInScript = `
(() => {
  return !!document.querySelector('img.global-nav__me-photo, .global-nav__me');
})()
`

// composerOpenScript clicks the profile's message button if present.
const composerOpenScript = `
(() => {
  const btn = Array.from(document.querySelectorAll('button, a'))
    .find((el) => /^message$/i.test((el.innerText || '').trim()));
  if (!btn) return false;
  btn.click();
  return true;
})()
`

// composerReadyScript reports whether the message composer is open and
// its text area is editable.
const composerReadyScript = `
(() => {
  const box = document.querySelector('div.msg-form__contenteditable[contenteditable="true"]');
  return !!box;
})()
`

// injectMessageScript sets the composer text through the editable div,
// dispatching an input event so the page enables its send button.
// %s is the JSON-encoded message.
const injectMessageScript = `
(() => {
  const box = document.querySelector('div.msg-form__contenteditable[contenteditable="true"]');
  if (!box) return false;
  box.focus();
  const text = %s;
  box.innerHTML = '';
  const p = document.createElement('p');
  p.textContent = text;
  box.appendChild(p);
  box.dispatchEvent(new InputEvent('input', { bubbles: true }));
  return true;
})()
`

// clickSendScript presses the composer's send button.
const clickSendScript = `
(() => {
  const btn = document.querySelector('button.msg-form__send-button');
  if (!btn || btn.disabled) return false;
  btn.click();
  return true;
})()
`

// verifySendScript inspects the composer after a send attempt:
// "sent" when the composer cleared or closed, "failed" when an inline
// error banner is visible, "unknown" otherwise.
const verifySendScript = `
(() => {
  if (document.querySelector('.msg-form__error, [data-test-message-send-error]')) return 'failed';
  const box = document.querySelector('div.msg-form__contenteditable[contenteditable="true"]');
  if (!box) return 'sent';
  if ((box.innerText || '').trim() === '') return 'sent';
  return 'unknown';
})()
`

// closeComposerScript dismisses the composer so the next profile starts
// from a clean page.
const closeComposerScript = `
(() => {
  const btn = document.querySelector('button.msg-overlay-bubble-header__control--close, [data-test-icon="close-small"]');
  if (!btn) return false;
  btn.click();
  return true;
})()
`
