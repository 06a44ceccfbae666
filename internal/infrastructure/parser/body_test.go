package parser

import "testing"

func TestRenderPlainText(t *testing.T) {
	t.Parallel()

	body := "Hi team,\r\n\r\n\r\n  My parcel is late.  \r\nOrder 1234\r\n\r\n"
	got := NewBodyRenderer().Render(body)
	want := "Hi team,\n\nMy parcel is late.\nOrder 1234"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderPlainTextWithAngleBrackets(t *testing.T) {
	t.Parallel()

	body := "Rating: 3 < 5 and <not a tag>"
	if got := NewBodyRenderer().Render(body); got != body {
		t.Fatalf("plain text altered: %q", got)
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	body := `<html><head><style>p{color:red}</style></head><body>
	  <p>Hello&nbsp;support,</p>
	  <div>The item arrived <b>damaged</b>.<br>Photos attached.</div>
	  <ul><li>Order: 1234</li><li>SKU: A-9</li></ul>
	  <p>See <a href="https://example.com/t/1">tracking</a> or <a href="mailto:a@b.c">email me</a>.</p>
	  <script>alert(1)</script>
	</body></html>`

	got := NewBodyRenderer().Render(body)
	want := "Hello support,\n" +
		"The item arrived damaged.\n" +
		"Photos attached.\n" +
		"- Order: 1234\n" +
		"- SKU: A-9\n" +
		"See tracking (https://example.com/t/1) or email me."
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderBlockquote(t *testing.T) {
	t.Parallel()

	body := `<p>Thanks!</p><blockquote><p>Original message</p><p>second line</p></blockquote>`
	got := NewBodyRenderer().Render(body)
	want := "Thanks!\n> Original message\n> second line"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}
