package pipeline

import "strings"

// promptTemplate is the fixed few-shot evaluation prompt. The worked
// examples and the output-format contract at the end are what the response
// parser relies on: one "label: value" line per rubric field.
const promptTemplate = `You are acting as a Loss Prevention Specialist. It is your job to evaluate a marketplace listing to determine its level of suspicion across several categories.
For the actual listing, you will be provided both an image AND text, however for the examples I provide, you will only have textual analysis.

I am going to provide you chain of thought reasoning through example listings to enhance your reasoning skills for the actual listing I provide you.

First, here are two examples that walk you through how to evaluate listings based off of text:

Fill out the rubric for each item from 1-10. 1 means the listing is almost certainly not suspicious for shoplifting. 10 means the listing is almost certainly shoplifted.

Listing: "Unopened bulk power tools - Cheap!!", Tools, $25

A: Reasoning: The listing is much cheaper than it should be at market price, is unopened, and is an often-shoplifted category.

Price raises suspicion: 10
Item is bulk: 10
Item is new: 9
Listing tone (urgency): 7
Item mentions retailer by name: 1
Overall likelihood shoplifted: 8

Listing: "Heavily used vintage keyboard", Electronics, $30

A: Reasoning: The listing is heavily used, opened, and reasonable at market price. The word "vintage" suggests shoplifting is unlikely.

Price raises suspicion: 3
Item is bulk: 1
Item is new: 1
Listing tone (urgency): 1
Item mentions retailer by name: 1
Overall likelihood shoplifted: 2

Classify the rubric that the listing below is shoplifted or not shoplifted. Follow the format of the examples provided.

Listing: "Brand New iPhone 15 Pro Max - Sealed Box!", Electronics, $400

A:

Reasoning: The listing is for a high-value item that is significantly underpriced compared to the market. It is sealed, which suggests it could have been stolen in bulk. Expensive electronics, especially iPhones, are frequently targeted by shoplifters.

Price raises suspicion: 10
Item is bulk: 7
Item is new: 10
Listing tone (urgency): 6
Item mentions retailer by name: 2
Overall likelihood shoplifted: 9

Answer in the exact format demonstrated.

You MUST include REASONING THAT REFERENCES THE IMAGE you have been provided.

The following is the listing you will evaluate:

Below is a photo of the item AND its listing details. Use both to evaluate.

Listing Title: {title}
Category: {category}
Price: {price}

First, describe any visual red flags you see in the photo (e.g. store labels, multiple items, background context).
Then fill out the rubric (1-10 scale; 1 = almost certainly not shoplifted, 10 = almost certainly shoplifted):

1. Price raises suspicion
2. Item is bulk
3. Item is new
4. Listing tone (urgency language)
5. Mentions retailer by name
6. Overall likelihood shoplifted

If Overall likelihood shoplifted >= 7, set stolen: yes; otherwise stolen: no.
Finally, include timestamp in UTC ISO8601 format.

Answer in this exact format:

Reasoning (visual+text): <analysis>
Price raises suspicion: <1-10>
Item is bulk: <1-10>
Item is new: <1-10>
Listing tone: <1-10>
Mentions retailer: <1-10>
Overall likelihood shoplifted: <1-10>
stolen: <yes/no>
timestamp: <YYYY-MM-DDThh:mm:ssZ>`

// BuildPrompt substitutes the listing fields into the evaluation template.
// Pure string substitution: empty fields pass through as empty strings and
// the same inputs always yield the same prompt.
func BuildPrompt(title, category, price string) string {
	return strings.NewReplacer(
		"{title}", title,
		"{category}", category,
		"{price}", price,
	).Replace(promptTemplate)
}
