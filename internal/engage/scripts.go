package engage

// Page scripts for harvesting post engagers and sending connection
// requests. The engagement list lives in a scrollable modal; the
// scripts operate inside it.

// openReactionsScript opens the post's reactions list.
const openReactionsScript = `
(() => {
  const btn = document.querySelector('button.social-details-social-counts__count-value, [data-jump-link-target="reactions"]');
  if (!btn) return false;
  btn.click();
  return true;
})()
`

// engagersScript extracts the currently rendered engagers from the
// reactions modal as name/profileUrl/headline/degree records.
const engagersScript = `
(() => {
  const rows = document.querySelectorAll('.social-details-reactors-tab-body li, .reactions-tab__list li');
  return Array.from(rows).map((row) => {
    const link = row.querySelector('a[href*="/in/"]');
    const name = row.querySelector('.artdeco-entity-lockup__title, .reactions-tab__name');
    const headline = row.querySelector('.artdeco-entity-lockup__caption, .reactions-tab__headline');
    const degree = row.querySelector('.artdeco-entity-lockup__degree, .reactions-tab__degree');
    return {
      name: name ? name.innerText.trim() : '',
      profileUrl: link ? link.href : '',
      headline: headline ? headline.innerText.trim() : '',
      degree: degree ? degree.innerText.trim() : '',
    };
  }).filter((r) => r.profileUrl);
})()
`

// scrollModalScript scrolls the reactions modal to load more engagers.
const scrollModalScript = `
(() => {
  const modal = document.querySelector('.artdeco-modal__content, .scaffold-finite-scroll__content');
  if (!modal) return false;
  modal.scrollTop = modal.scrollHeight;
  return true;
})()
`

// connectScript clicks the Connect button on a profile page. Returns
// "pending" when the page shows an outstanding invitation, "connected"
// when already connected, "clicked" when the request was initiated,
// and "unavailable" when no connect control exists.
const connectScript = `
(() => {
  const actions = document.querySelector('.pv-top-card-v2-ctas, .pvs-profile-actions');
  if (!actions) return 'unavailable';
  const text = actions.innerText || '';
  if (/pending/i.test(text)) return 'pending';
  if (/^message\b/im.test(text) && !/connect/i.test(text)) return 'connected';
  const btn = Array.from(actions.querySelectorAll('button'))
    .find((el) => /connect/i.test((el.innerText || '').trim()));
  if (!btn) return 'unavailable';
  btn.click();
  return 'clicked';
})()
`

// addNoteScript attaches a note to the open invitation dialog.
// %s is the JSON-encoded note text.
const addNoteScript = `
(() => {
  const addBtn = Array.from(document.querySelectorAll('button'))
    .find((el) => /add a note/i.test((el.innerText || '').trim()));
  if (addBtn) addBtn.click();
  const box = document.querySelector('textarea[name="message"], #custom-message');
  if (!box) return false;
  box.value = %s;
  box.dispatchEvent(new Event('input', { bubbles: true }));
  return true;
})()
`

// sendInviteScript confirms the invitation dialog.
const sendInviteScript = `
(() => {
  const btn = Array.from(document.querySelectorAll('button'))
    .find((el) => /^send\b/i.test((el.innerText || '').trim()));
  if (!btn || btn.disabled) return false;
  btn.click();
  return true;
})()
`
