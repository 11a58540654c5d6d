package extractor

// harvestScript collects candidate slots from the rendered booking
// page. A slot is any button whose text carries an am/pm marker; the
// surrounding date header and location heading provide the context
// fields when they can be found. Missing context stays empty — the
// filter downstream decides what to do with partial records.
const harvestScript = `(() => {
	const isTime = (t) => /\b(am|pm)\b/i.test(t);
	const isMonth = (t) => /(january|february|march|april|may|june|july|august|september|october|november|december)/i.test(t);

	let date = "";
	for (const el of document.querySelectorAll('h3, .date-header, [class*="date"]')) {
		const t = (el.textContent || "").trim();
		if (t && isMonth(t)) { date = t; break; }
	}

	let location = "";
	for (const el of document.querySelectorAll('h2, .location-name, [class*="location"]')) {
		const t = (el.textContent || "").trim();
		if (t) { location = t; break; }
	}

	const seen = new Set();
	const out = [];
	const slotSelectors = [
		'button[class*="time"]', 'button[class*="appointment"]',
		'.time-slot', '.appointment-slot', '.slot-button', 'button',
	];
	for (const sel of slotSelectors) {
		for (const el of document.querySelectorAll(sel)) {
			const t = (el.textContent || "").trim();
			if (!t || !isTime(t) || seen.has(t)) continue;
			seen.add(t);
			out.push({ time: t, date: date, location: location });
		}
	}
	return out;
})()`
