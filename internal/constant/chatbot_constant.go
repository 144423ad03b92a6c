package constant

// Replies used when composition is unavailable or a flow ends early.
const (
	ReplyStart = `Welcome to the fashion recommender!
Tell me your customer id to get recommendations from your history, or describe what you are looking for (for example "red casual t-shirts for men").
Use /reset to start over at any time.`

	ReplyGreeting         = "Hello! Tell me your customer id or describe the products you are looking for."
	ReplyReset            = "I've reset your session. You can start a new conversation now."
	ReplyOutOfDomain      = "I can only help with fashion products. Try describing a garment, a colour or an occasion."
	ReplyNotUnderstood    = "Sorry, I didn't understand which product you mean. Please refer to it by its number or name."
	ReplyAskCustomerID    = "Please tell me your numeric customer id."
	ReplyCustomerNotFound = "I couldn't find any customer with ID %d."
	ReplyWelcome          = "Welcome back, %s!"
	ReplyNothingShown     = "There are no products on screen yet. Describe what you are looking for first."
	ReplyAskBase          = "Which product should I use as a reference? Pick one of the products shown or search for something first."
	ReplyUnavailable      = "Similar-item recommendations are currently unavailable. Please try a regular search."
	ReplyServiceDown      = "Sorry, I'm having trouble reaching one of my services. Please try again in a moment."
	ReplyNoSimilar        = "I couldn't find products similar to %s."
	ReplyNoHistory        = "I couldn't find any purchase history for you yet. Describe what you are looking for and I'll search the catalog."
	ReplyHistoryIntro     = "Based on your history, I picked this product as a reference:"
	ReplyHistoryMessage   = "Here are some products similar to %s you might like."
	ReplySimilarIntro     = "Here are products similar to %s:"
	ReplyPostSuggestion   = "Do you want details of one or more similar to one shown?"
	ReplyActiveSessions   = "Active sessions: %d"
	ReplyNotFound         = "I couldn't find what you asked for."

	NoteProcessing          = "Processing your request..."
	NoteBroadening          = "Broadening the search..."
	NoteSearching           = "Searching the catalog..."
	NoteFound               = "Found products you may like"
	NoteNoProducts          = "No products found with these filters."
	NoteOnlyFound           = "Only found %d product(s) with these filters."
	NoteExpansionFailed     = "I couldn't broaden the filters; showing the best I found"
	NoteNoResults           = "No products matched your request. Try different words or fewer constraints."
	NoteDescriptionFallback = "No additional description is available for this product."
)

// Bot commands handled before intent classification.
const (
	CommandStart  = "/start"
	CommandReset  = "/reset"
	CommandEstado = "/estado"
	CommandStatus = "/status"
)
