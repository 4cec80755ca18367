package browser

import "fmt"

// labListScript collects the links of the second list in the sidebar, which holds the lab calendars
func labListScript() string {
	return fmt.Sprintf(`
		(() => {
			const lists = document.querySelectorAll(%q);
			if (lists.length < 2) return [];

			return Array.from(lists[1].querySelectorAll('a')).map(link => ({
				name: link.textContent.trim(),
				href: link.getAttribute('href') || ''
			}));
		})()
	`, labListSelector)
}

// todayScript pairs each booking link in today's cell with the start time span next to it
func todayScript() string {
	return fmt.Sprintf(`
		(() => {
			const today = document.querySelector(%q);
			if (!today) return {found: false, rows: []};

			const links = today.querySelectorAll('a');
			const spans = today.querySelectorAll('span');
			const count = Math.min(links.length, spans.length);

			const rows = [];
			for (let i = 0; i < count; i++) {
				rows.push({
					name: links[i].textContent.trim(),
					start: spans[i].textContent.trim(),
					url: links[i].getAttribute('href') || ''
				});
			}
			return {found: true, rows: rows};
		})()
	`, todaySelector)
}

// endTimeScript reads the displayed end time of a booking, or an empty string
func endTimeScript() string {
	return fmt.Sprintf(`
		(() => {
			const end = document.querySelector(%q);
			return end ? end.textContent.trim() : '';
		})()
	`, endSelector)
}
